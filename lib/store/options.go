package store

import (
	"os"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the construction of a Vecx or Mapx.
//
// Example:
//
//	opts := store.DefaultOptions().
//		WithCapacity(1024).
//		WithEphemeral(true)
//	vec, err := store.NewVecx(opts, codec.NewJSONCodec[Block]())
type Options struct {
	// Path of the instance directory. Empty means UniquePath(BaseDir).
	Path string

	// Capacity bounds the number of decoded elements kept in memory.
	// nil is unbounded, 0 disables caching.
	Capacity *uint64

	// Ephemeral removes the instance directory when the collection is closed.
	Ephemeral bool

	// BaseDir is used to generate a path when Path is empty.
	BaseDir string

	// Factory opens the embedded store, DefaultDBFactory if nil.
	Factory DBFactory
}

// DefaultOptions returns unbounded, durable options with a generated path
// under the system temp directory.
func DefaultOptions() *Options {
	return &Options{
		BaseDir: os.TempDir(),
	}
}

// WithPath sets the instance directory.
func (o *Options) WithPath(path string) *Options {
	o.Path = path
	return o
}

// WithCapacity bounds the in-memory window.
func (o *Options) WithCapacity(capacity uint64) *Options {
	o.Capacity = &capacity
	return o
}

// Unbounded removes the capacity bound.
func (o *Options) Unbounded() *Options {
	o.Capacity = nil
	return o
}

// WithEphemeral marks the instance as ephemeral.
func (o *Options) WithEphemeral(ephemeral bool) *Options {
	o.Ephemeral = ephemeral
	return o
}

// WithBaseDir sets the directory used for generated paths.
func (o *Options) WithBaseDir(dir string) *Options {
	o.BaseDir = dir
	return o
}

// WithFactory overrides the embedded store engine. The engine is not part of
// the Descriptor: a collection created on another engine (e.g. maple.Open)
// must be restored with the same factory set on Descriptor.Options().
func (o *Options) WithFactory(factory DBFactory) *Options {
	o.Factory = factory
	return o
}

// resolvePath returns the configured path or generates one. skip is the
// number of frames between the exported constructor's caller and this call.
func (o *Options) resolvePath(skip int) string {
	if o.Path != "" {
		return o.Path
	}
	base := o.BaseDir
	if base == "" {
		base = os.TempDir()
	}
	return uniquePath(base, skip+1)
}

// --------------------------------------------------------------------------
// Descriptor
// --------------------------------------------------------------------------

// Descriptor is everything needed to reopen a collection: where it lives, how
// much of it is cached and whether it is ephemeral. It never carries elements.
// An ephemeral descriptor is only valid while its creating collection is alive
// in the same process. The engine is not recorded; see Options.WithFactory.
type Descriptor struct {
	Path      string  `json:"path"`
	Capacity  *uint64 `json:"capacity,omitempty"`
	Ephemeral bool    `json:"ephemeral"`
}

// Validate checks that the descriptor can be restored.
func (d Descriptor) Validate() error {
	if d.Path == "" {
		return wrapError(RetCInvalidOperation, nil, "descriptor has no path")
	}
	return nil
}

// Options converts the descriptor back into construction options.
func (d Descriptor) Options() *Options {
	opts := DefaultOptions().WithPath(d.Path).WithEphemeral(d.Ephemeral)
	if d.Capacity != nil {
		opts.WithCapacity(*d.Capacity)
	}
	return opts
}

func descriptorOf(h *handle, capacity *uint64) Descriptor {
	d := Descriptor{Path: h.path, Ephemeral: h.ephemeral}
	if capacity != nil {
		c := *capacity
		d.Capacity = &c
	}
	return d
}
