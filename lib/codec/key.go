package codec

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Order preserving key codecs
// --------------------------------------------------------------------------

// StringKey encodes strings as their raw bytes (bytewise order).
type StringKey struct{}

func (StringKey) EncodeKey(k string) []byte { return []byte(k) }

func (StringKey) DecodeKey(b []byte) (string, error) { return string(b), nil }

// BytesKey encodes byte slices as themselves.
type BytesKey struct{}

func (BytesKey) EncodeKey(k []byte) []byte { return append([]byte{}, k...) }

func (BytesKey) DecodeKey(b []byte) ([]byte, error) { return append([]byte{}, b...), nil }

// Uint64Key encodes unsigned integers big-endian, so byte order equals numeric order.
type Uint64Key struct{}

func (Uint64Key) EncodeKey(k uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), k)
}

func (Uint64Key) DecodeKey(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("uint64 key must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// Int64Key encodes signed integers big-endian with the sign bit flipped,
// so negative numbers sort before positive ones.
type Int64Key struct{}

const signBit = uint64(1) << 63

func (Int64Key) EncodeKey(k int64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), uint64(k)^signBit)
}

func (Int64Key) DecodeKey(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("int64 key must be 8 bytes, got %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b) ^ signBit), nil
}
