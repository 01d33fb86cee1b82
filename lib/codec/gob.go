package codec

import (
	"bytes"
	"encoding/gob"
)

// NewGOBCodec creates a new codec using Go's binary gob format.
// Every value is encoded with a fresh encoder, so each record carries its own
// type description and can be decoded on its own.
func NewGOBCodec[V any]() Codec[V] {
	return gobCodecImpl[V]{}
}

// gobCodecImpl implements the Codec interface using gob encoding
type gobCodecImpl[V any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (g gobCodecImpl[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobCodecImpl[V]) Decode(b []byte) (V, error) {
	var v V
	dec := gob.NewDecoder(bytes.NewReader(b))
	err := dec.Decode(&v)
	return v, err
}
