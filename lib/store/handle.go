package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/db"
	"github.com/ValentinKolb/fundb/lib/db/engines/pebbledb"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var plog = logger.GetLogger(common.LoggerStore)

// DBFactory opens the embedded store of one instance directory.
type DBFactory func(path string, ephemeral bool) (db.KVDB, error)

// DefaultDBFactory is the pebble engine.
var DefaultDBFactory DBFactory = pebbledb.Open

// requiredFeatures must be supported by every engine a collection is built on.
const requiredFeatures = db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureRange

// openPaths holds the absolute paths of all live collections in this process.
// A path can only be opened by one collection at a time, otherwise the length
// header and the cache would drift away from what is on disk.
var openPaths = xsync.NewMapOf[string, struct{}]()

// --------------------------------------------------------------------------
// Store handle
// --------------------------------------------------------------------------

// handle owns the embedded store and the length header of one instance
// directory. Both collections embed it.
//
// Not thread-safe.
type handle struct {
	path      string // absolute instance directory
	ephemeral bool
	db        db.KVDB
	length    uint64 // mirrors the length header
}

// openHandle registers path, opens the engine and reads (or creates) the
// length header. On failure nothing stays registered or open.
func openHandle(path string, ephemeral bool, factory DBFactory) (*handle, error) {
	if path == "" {
		return nil, wrapError(RetCInvalidOperation, nil, "empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapError(RetCOpenError, err, "resolve %s", path)
	}
	if factory == nil {
		factory = DefaultDBFactory
	}

	if _, loaded := openPaths.LoadOrStore(abs, struct{}{}); loaded {
		return nil, wrapError(RetCOpenError, nil, "path %s is already in use", abs)
	}

	h, err := openRegistered(abs, ephemeral, factory)
	if err != nil {
		openPaths.Delete(abs)
		return nil, err
	}

	opensTotal.Inc()
	plog.Debugf("opened %s (len=%d, ephemeral=%t)", abs, h.length, ephemeral)
	return h, nil
}

func openRegistered(abs string, ephemeral bool, factory DBFactory) (*handle, error) {
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, wrapError(RetCOpenError, err, "create %s", abs)
	}

	kv, err := factory(abs, ephemeral)
	if err != nil {
		return nil, wrapError(RetCOpenError, err, "open store at %s", abs)
	}
	if !kv.SupportsFeature(requiredFeatures) {
		_ = kv.Close()
		return nil, wrapError(RetCOpenError, nil, "store at %s lacks required features", abs)
	}

	h := &handle{path: abs, ephemeral: ephemeral, db: kv}
	if err := h.loadLength(); err != nil {
		_ = kv.Close()
		return nil, err
	}
	return h, nil
}

// loadLength reads the length header. A missing header is only valid for an
// empty store; it is then created with count 0.
func (h *handle) loadLength() error {
	n, err := ReadLength(h.headerPath())
	if err == nil {
		h.length = n
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	hasData := false
	if rerr := h.db.Range(nil, nil, func(_, _ []byte) bool {
		hasData = true
		return false
	}); rerr != nil {
		return wrapError(RetCReadError, rerr, "scan %s", h.path)
	}
	if hasData {
		corruptionsTotal.Inc()
		return wrapError(RetCCorruption, err, "length header of %s is missing but the store has data", h.path)
	}

	if werr := WriteLength(h.headerPath(), 0); werr != nil {
		return werr
	}
	h.length = 0
	return nil
}

func (h *handle) headerPath() string {
	return filepath.Join(h.path, headerFile)
}

// setLength persists n and updates the in-memory count on success only.
func (h *handle) setLength(n uint64) error {
	if err := WriteLength(h.headerPath(), n); err != nil {
		return err
	}
	h.length = n
	return nil
}

// check fails all operations on a closed handle.
func (h *handle) check() error {
	if h.db == nil {
		return wrapError(RetCInvalidOperation, nil, "collection at %s is closed", h.path)
	}
	return nil
}

// close closes the engine and releases the path. An ephemeral instance
// directory is removed here, whatever the engine does, because the length
// header lives in it. Closing twice is a no-op.
func (h *handle) close() error {
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	if h.ephemeral {
		if rerr := os.RemoveAll(h.path); rerr != nil && err == nil {
			err = rerr
		}
	}
	openPaths.Delete(h.path)
	if err != nil {
		return wrapError(RetCInternalError, err, "close %s", h.path)
	}
	plog.Debugf("closed %s", h.path)
	return nil
}
