// Package store provides the disk-backed collections of fundb: Vecx, a dense
// append-only vector, and Mapx, an ordered key-value map. Both keep a bounded
// window of decoded elements in memory while the full dataset lives in an
// embedded ordered key-value store (db.KVDB, pebble by default).
//
// The package focuses on:
//   - Larger-than-memory collections with slice and map ergonomics
//   - A length header whose corruption is detected, never silently repaired
//   - Observable cache behavior (hits and misses per instance and per process)
//   - Reopening a collection from a small serializable Descriptor
//
// Key Components:
//
//   - Store Handle: Every collection owns one instance directory. It holds the
//     engine's files (store/) and the length header (len). A process-wide registry
//     refuses to open a directory that is already held by a live collection.
//     Ephemeral instances remove their directory on Close.
//
//   - Length Header: The element count is stored as two equal little-endian uint64
//     values written in one block (WriteLength, ReadLength). Unequal copies or a
//     short file are reported as RetCCorruption. fundb never repairs the header.
//
//   - Value: The read result of Get, Last and the iterators. A cache hit returns a
//     borrowed Value, a store read an owned one. Value.Take hands out a copy the
//     caller may mutate (Clone if the type implements Cloner, else a codec round trip).
//
//   - Cache Windows: The vector caches the contiguous tail [len-k, len) with
//     k = min(capacity, len). Reads of older elements never enter the window. The map
//     caches the least recently used set of at most capacity entries; Insert and Get
//     refresh recency, Has and iteration do not. A nil capacity is unbounded, 0
//     disables caching.
//
//   - Descriptor: {path, capacity, ephemeral}. It is what MarshalJSON emits and
//     what RestoreVecx / RestoreMapx consume; it never carries elements.
//
//   - Helpers: Options (builder for construction), UniquePath (collision free
//     instance paths below a base directory) and TryTwice (retry a construction
//     once, logging the first failure).
//
// Error Handling:
//
//	Every operation returns *Error with a RetCode. Match with errors.Is against
//	the sentinels (ErrOpen, ErrWrite, ErrRead, ErrCorruption, ErrDecode,
//	ErrInvalidOperation). A missing index or key is not an error, it is reported
//	through the boolean result. Decode errors only fail the call that hit them.
//
// Example:
//
//	opts := store.DefaultOptions().WithPath("/var/lib/app/blocks").WithCapacity(128)
//	vec, err := store.TryTwice(nil, func() (*store.Vecx[Block], error) {
//		return store.NewVecx(opts, codec.NewGOBCodec[Block]())
//	})
//	if err != nil {
//		return err
//	}
//	defer vec.Close()
//
//	_ = vec.Push(Block{Height: 1})
//	last, ok, err := vec.Last()
//
// Metrics:
//
//	WriteMetrics emits process-wide counters in Prometheus text format
//	(fundb_cache_hits_total, fundb_cache_misses_total, fundb_opens_total,
//	fundb_open_retries_total, fundb_corruptions_total). Stats returns the
//	per-instance view.
//
// Thread-safety: Collections are not thread-safe. The registry and the metrics
// are safe for concurrent use.
package store
