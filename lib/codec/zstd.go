package codec

import (
	"github.com/klauspost/compress/zstd"
)

// NewZstdCodec wraps inner so that every encoded value is zstd compressed.
// Worth it for large, repetitive elements; for small ones the frame header dominates.
func NewZstdCodec[V any](inner Codec[V]) (Codec[V], error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &zstdCodecImpl[V]{inner: inner, enc: enc, dec: dec}, nil
}

// zstdCodecImpl implements the Codec interface by compressing the output of another codec.
// EncodeAll and DecodeAll are safe for concurrent use.
type zstdCodecImpl[V any] struct {
	inner Codec[V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func (z *zstdCodecImpl[V]) Encode(v V) ([]byte, error) {
	b, err := z.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(b, nil), nil
}

func (z *zstdCodecImpl[V]) Decode(b []byte) (V, error) {
	raw, err := z.dec.DecodeAll(b, nil)
	if err != nil {
		var zero V
		return zero, err
	}
	return z.inner.Decode(raw)
}
