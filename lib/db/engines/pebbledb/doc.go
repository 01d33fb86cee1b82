// Package pebbledb implements the db.KVDB interface on top of CockroachDB's
// Pebble, an embedded LSM key-value engine with ordered iteration.
//
// Layout:
//
//	<path>/          instance directory handed to Open
//	<path>/store/    pebble's own files (MANIFEST, WAL, sstables, LOCK)
//
// The instance directory belongs to the caller; fundb keeps its length header
// next to the store directory (see the store package).
//
// Key Features:
//   - Point operations (Set, Get, Delete) with pebble.Sync writes, so every single
//     write is crash-atomic and durable once it returns
//   - Ascending range scans via pebble iterators with [lower, upper) bounds
//   - Ephemeral mode: the instance directory is removed when the database is closed
//   - Pebble's log output is routed into the "pebble" logger of the common package
//
// Thread Safety:
//
//	Pebble itself is safe for concurrent use. The fundb collections built on top
//	assume a single owner per instance and do no locking of their own.
//
// Usage Example:
//
//	database, err := pebbledb.Open("/var/lib/app/ledger", false)
//	if err != nil {
//		return err
//	}
//	defer database.Close()
//
//	_ = database.Set([]byte("k"), []byte("v"))
//	_ = database.Range(nil, nil, func(k, v []byte) bool {
//		fmt.Printf("%s=%s\n", k, v)
//		return true
//	})
package pebbledb
