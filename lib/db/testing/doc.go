// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - testing: A conformance suite for the KVDB contract (point operations,
//     ascending range scans with bounds and early stop, copy semantics, edge cases)
//   - benchmark: Performance tests for the access patterns of the fundb
//     collections (sequential appends, point reads, short scans)
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() db.KVDB {
//		database, _ := mydb.Open(t.TempDir(), true)
//		return database
//	}
//
//	// Running the standard test suite
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
//
//	// Running performance benchmarks
//	dbtesting.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
