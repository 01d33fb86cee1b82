package maple

import (
	"sync/atomic"

	"github.com/ValentinKolb/fundb/lib/common"
	"github.com/ValentinKolb/fundb/lib/db"
	"github.com/ValentinKolb/fundb/lib/db/engines/maple/internal"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var plog = logger.GetLogger(common.LoggerMaple)

// trees holds the data of every maple database in this process by path.
// A non-ephemeral database keeps its tree after Close, so reopening the same
// path sees the same data until the process exits.
var trees = xsync.NewMapOf[string, *internal.Tree]()

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements db.KVDB on an in-memory btree
type mapleImpl struct {
	path      string         // identity of the tree in trees
	ephemeral bool           // drop the tree on Close
	tree      *internal.Tree // shared with later opens of the same path
	closed    atomic.Bool
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// Open opens the in-memory database named path, creating it if needed.
// Nothing is written to the filesystem.
//
// Thread-safety: The returned database may be used concurrently.
func Open(path string, ephemeral bool) (db.KVDB, error) {
	tree, loaded := trees.LoadOrCompute(path, internal.NewTree)
	plog.Debugf("opened %s (existing=%t, ephemeral=%t)", path, loaded, ephemeral)

	return &mapleImpl{
		path:      path,
		ephemeral: ephemeral,
		tree:      tree,
	}, nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
func (m *mapleImpl) Set(key, value []byte) error {
	if m.closed.Load() {
		return db.ErrClosed
	}
	m.tree.Set(key, value)
	return nil
}

// Delete removes an entry with the specified key.
func (m *mapleImpl) Delete(key []byte) error {
	if m.closed.Load() {
		return db.ErrClosed
	}
	m.tree.Delete(key)
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get retrieves a copy of the value stored for key.
func (m *mapleImpl) Get(key []byte) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, db.ErrClosed
	}
	value, ok := m.tree.Get(key)
	return value, ok, nil
}

// Range visits all entries in [lower, upper) in ascending key order.
func (m *mapleImpl) Range(lower, upper []byte, fn func(key, value []byte) bool) error {
	if m.closed.Load() {
		return db.ErrClosed
	}
	m.tree.Range(lower, upper, fn)
	return nil
}

// --------------------------------------------------------------------------
// Feature Support and Information
// --------------------------------------------------------------------------

func (m *mapleImpl) features() db.Feature {
	f := db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureRange
	if m.ephemeral {
		f |= db.FeatureEphemeral
	}
	return f
}

// SupportsFeature checks if the database implementation supports the specified feature.
func (m *mapleImpl) SupportsFeature(feature db.Feature) bool {
	return m.features()&feature == feature
}

// GetInfo returns information about the database.
func (m *mapleImpl) GetInfo() db.DatabaseInfo {
	var supported []db.Feature
	for f := db.FeatureSet; f <= db.FeatureEphemeral; f <<= 1 {
		if m.SupportsFeature(f) {
			supported = append(supported, f)
		}
	}

	return db.DatabaseInfo{
		Path:              m.path,
		SizeBytes:         m.tree.Size(),
		DbType:            db.ImplMaple,
		SupportedFeatures: supported,
		Metadata: map[string]interface{}{
			"ephemeral": m.ephemeral,
			"entries":   m.tree.Len(),
		},
	}
}

// Close detaches the handle. An ephemeral database drops its data.
func (m *mapleImpl) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.ephemeral {
		trees.Delete(m.path)
		plog.Debugf("dropped ephemeral %s", m.path)
	}
	return nil
}
