package pebbledb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/db"
	"github.com/cockroachdb/pebble"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// storeDir is the sub directory of the instance path holding pebble's files
	storeDir = "store"
)

var plog = logger.GetLogger(common.LoggerPebble)

// --------------------------------------------------------------------------
// Core pebble database structure
// --------------------------------------------------------------------------

// pebbleImpl implements db.KVDB on top of a pebble LSM instance
type pebbleImpl struct {
	path      string     // instance directory
	ephemeral bool       // remove path on Close
	pdb       *pebble.DB // underlying pebble instance
	writeOpts *pebble.WriteOptions
}

// DBOptions configures the pebbleImpl behavior during initialization
type DBOptions struct {
	Ephemeral bool // Remove all files on Close
	NoSync    bool // Skip fsync on writes (tests and benchmarks only)
}

// DefaultOptions returns the default pebbleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// Open opens (or creates) the database rooted at path. The directory structure
// is created if it does not exist.
//
// Thread-safety: The returned database may be used concurrently, but the
// collections built on top of it assume a single owner.
func Open(path string, ephemeral bool) (db.KVDB, error) {
	opts := DefaultOptions()
	opts.Ephemeral = ephemeral
	return OpenWithOptions(path, opts)
}

// OpenWithOptions is Open with explicit options (optional).
func OpenWithOptions(path string, opts *DBOptions) (db.KVDB, error) {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	pdb, err := pebble.Open(filepath.Join(path, storeDir), &pebble.Options{
		Logger: pebbleLogger{},
	})
	if err != nil {
		if opts.Ephemeral {
			_ = os.RemoveAll(path)
		}
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}

	writeOpts := pebble.Sync
	if opts.NoSync {
		writeOpts = pebble.NoSync
	}

	plog.Debugf("opened %s (ephemeral=%t)", path, opts.Ephemeral)

	return &pebbleImpl{
		path:      path,
		ephemeral: opts.Ephemeral,
		pdb:       pdb,
		writeOpts: writeOpts,
	}, nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
func (p *pebbleImpl) Set(key, value []byte) error {
	return p.pdb.Set(key, value, p.writeOpts)
}

// Delete removes an entry with the specified key.
func (p *pebbleImpl) Delete(key []byte) error {
	return p.pdb.Delete(key, p.writeOpts)
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get retrieves a copy of the value stored for key.
func (p *pebbleImpl) Get(key []byte) ([]byte, bool, error) {
	val, closer, err := p.pdb.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	// pebble only guarantees val until closer is closed
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// Range visits all entries in [lower, upper) in ascending key order.
func (p *pebbleImpl) Range(lower, upper []byte, fn func(key, value []byte) bool) (err error) {
	iter := p.pdb.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	defer func() {
		if cerr := iter.Close(); err == nil {
			err = cerr
		}
	}()

	for valid := iter.First(); valid; valid = iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

// --------------------------------------------------------------------------
// Feature Support and Information
// --------------------------------------------------------------------------

func (p *pebbleImpl) features() db.Feature {
	f := db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureRange
	if p.ephemeral {
		return f | db.FeatureEphemeral
	}
	return f | db.FeatureDurable
}

// SupportsFeature checks if the database implementation supports the specified feature.
func (p *pebbleImpl) SupportsFeature(feature db.Feature) bool {
	return p.features()&feature == feature
}

// GetInfo returns information about the database.
func (p *pebbleImpl) GetInfo() db.DatabaseInfo {
	var supported []db.Feature
	for f := db.FeatureSet; f <= db.FeatureEphemeral; f <<= 1 {
		if p.SupportsFeature(f) {
			supported = append(supported, f)
		}
	}

	m := p.pdb.Metrics()
	return db.DatabaseInfo{
		Path:              p.path,
		SizeBytes:         int(m.DiskSpaceUsage()),
		DbType:            db.ImplPebble,
		SupportedFeatures: supported,
		Metadata: map[string]interface{}{
			"ephemeral":    p.ephemeral,
			"wal_files":    m.WAL.Files,
			"flush_count":  m.Flush.Count,
			"compactions":  m.Compact.Count,
			"memtable_len": m.MemTable.Count,
		},
	}
}

// Close closes pebble. An ephemeral database removes its whole directory.
func (p *pebbleImpl) Close() error {
	err := p.pdb.Close()
	if p.ephemeral {
		if rerr := os.RemoveAll(p.path); rerr != nil && err == nil {
			err = rerr
		}
		plog.Debugf("removed ephemeral %s", p.path)
	}
	return err
}

// --------------------------------------------------------------------------
// Logging
// --------------------------------------------------------------------------

// pebbleLogger routes pebble's own log output into the fundb pebble logger.
// Pebble logs every flush and compaction at info, which is debug noise for us.
type pebbleLogger struct{}

func (pebbleLogger) Infof(format string, args ...interface{}) {
	plog.Debugf(format, args...)
}

func (pebbleLogger) Fatalf(format string, args ...interface{}) {
	plog.Panicf(format, args...)
}
