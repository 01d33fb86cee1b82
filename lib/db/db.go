package db

import "errors"

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("database is closed")

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplPebble Implementation = "pebble"
	ImplMaple  Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet       Feature = 1 << iota // Support for Set operations
	FeatureGet                           // Support for Get operations
	FeatureDelete                        // Support for Delete operations
	FeatureRange                         // Support for ascending Range scans
	FeatureDurable                       // Writes survive a process restart
	FeatureEphemeral                     // Files are removed on Close
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureRange:
		return "Range"
	case FeatureDurable:
		return "Durable"
	case FeatureEphemeral:
		return "Ephemeral"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	Path              string         `json:"path"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for embedded, ordered key-value database implementations.
// Keys are compared bytewise; Range visits them in ascending order.
// Every single Set or Delete must be crash-atomic on its own, there is no multi-key atomicity.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key and value.
	// If the key already exists, the old value is overwritten.
	Set(key, value []byte) (err error)

	// Delete removes the entry with the specified key.
	// Deleting a key that does not exist is not an error.
	Delete(key []byte) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is owned by the caller.
	Get(key []byte) (value []byte, loaded bool, err error)

	// Range calls fn for every entry with lower <= key < upper in ascending key order.
	// A nil bound is unbounded. Iteration stops early when fn returns false.
	// Key and value passed to fn are owned by the callee.
	Range(lower, upper []byte, fn func(key, value []byte) bool) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database. An ephemeral database removes its files.
	Close() (err error)
}
