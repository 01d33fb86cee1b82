// Package codec provides the value and key encodings used by the fundb
// collections. It defines a common interface and multiple implementations
// for turning elements into the bytes stored in the embedded database.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Order preserving key encodings, so ascending scans of the store equal
//     ascending key order of the map
//   - Optional compression for large elements
//
// Key Components:
//
//   - Codec[V]: Core interface that all value codec implementations must satisfy.
//
//   - jsonCodecImpl: JSON encoding. Human-readable and the default; the CLI stores
//     values in this format.
//
//   - gobCodecImpl: Go's gob encoding. Handles types JSON cannot (e.g. maps with
//     struct keys) at the price of larger records, since every record carries its
//     own type description.
//
//   - rawCodecImpl: identity codec for []byte payloads.
//
//   - zstdCodecImpl: wraps any other codec and zstd-compresses its output
//     (github.com/klauspost/compress/zstd).
//
//   - KeyCodec[K]: order preserving key encodings for the map: StringKey, BytesKey,
//     Uint64Key (big-endian) and Int64Key (big-endian with the sign bit flipped).
//
// Thread Safety:
//
//	All codec implementations are safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	c := codec.NewJSONCodec[Block]()
//	data, err := c.Encode(block)
//	// ... store data ...
//	restored, err := c.Decode(data)
package codec
