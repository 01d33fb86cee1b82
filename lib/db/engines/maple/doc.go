// Package maple implements an in-memory, ordered key-value database (KVDB).
// It provides a complete implementation of the db.KVDB interface without
// touching the filesystem, which makes it the engine of choice for tests and
// for scratch collections that never need to outlive the process.
//
// The package focuses on:
//   - Ordered storage on a btree (github.com/google/btree), so Range visits
//     keys in ascending bytewise order like the pebble engine
//   - Copy semantics: keys and values are copied on Set and again on Get and
//     Range, a caller can never alias the stored bytes
//   - Process lifetime: a database is named by its path and kept in a
//     process-wide registry, so closing and reopening a non-ephemeral path
//     sees the same data
//
// Key Components:
//
//   - mapleImpl: The handle returned by Open. It implements db.KVDB and
//     delegates to the shared tree of its path. Operations on a closed handle
//     fail with db.ErrClosed. Closing an ephemeral handle drops the tree.
//
//   - Tree (internal): The btree of Entry values guarded by a read-write lock.
//     Range copies the visited entries under the read lock and calls the
//     callback after releasing it, so the callback may write to the database.
//
// Supported Features:
//
//	Set, Get, Delete and Range are always supported. Ephemeral is advertised
//	when the database was opened as ephemeral. Durable is never advertised:
//	the data is gone when the process exits.
//
// Usage with the store package:
//
//	opts := store.DefaultOptions().
//		WithPath("scratch/blocks").
//		WithFactory(maple.Open)
//	vec, err := store.NewVecx(opts, codec.NewJSONCodec[Block]())
//
// The length header of a collection is still a file below its path, only the
// elements live in memory.
package maple
