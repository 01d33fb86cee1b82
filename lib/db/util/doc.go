// Package util provides utility components shared by the db engines and the
// fundb collections.
//
// The package contains:
//   - statistics: a SizeHistogram for tracking the size distribution of encoded elements
//   - functions: random seeds (used for unique path suffixes)
//   - mapheap: a keyed min priority queue, the recency queue of the map cache
//
// None of the components are tied to a particular db.KVDB implementation.
package util
