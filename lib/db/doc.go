// Package db provides a standardized interface for the embedded, ordered key-value
// database that backs the fundb collections.
//
// The package focuses on:
//   - A unified interface for ordered key-value operations
//   - Feature discovery through capability flags
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for point operations (Set, Get, Delete), ascending range
//     scans (Range), metadata retrieval (GetInfo) and lifecycle (Close).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. The collections in the store
//     package refuse to open on an engine that lacks Set, Get, Delete or Range.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends ("pebble" and the in-memory "maple").
//
// Note on Ordering:
//   - Keys are compared bytewise. Callers that need numeric order encode their keys
//     big-endian (see the codec package for order-preserving key codecs).
//   - Range bounds are [lower, upper). A nil bound is unbounded on that side.
//
// Note on Durability:
//   - A single Set or Delete is crash-atomic. Nothing spanning several keys is.
//   - An ephemeral database is a normal on-disk database whose files are removed
//     when Close is called. Its path must not be reused before that.
//
// Related Packages:
//
// The engines/pebbledb package (github.com/ValentinKolb/fundb/lib/db/engines/pebbledb) provides
// the KVDB implementation on top of CockroachDB's Pebble LSM engine.
//
// The engines/maple package (github.com/ValentinKolb/fundb/lib/db/engines/maple) provides
// an in-memory KVDB whose data lives as long as the process, for tests and scratch collections.
//
// The util package (github.com/ValentinKolb/fundb/lib/db/util) provides complementary tools:
//   - SizeHistogram: Utilities for analyzing data size distributions
//   - MapHeap: A keyed priority queue, used as the recency queue of the map cache
//   - GenerateSeed: Random seeds for unique path generation
//
// The testing package (github.com/ValentinKolb/fundb/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
package db
