package codec

// Codec is the interface for all value codecs.
// Encode must be deterministic for equal values; Decode must accept anything Encode produced.
type Codec[V any] interface {
	// Encode serializes a value into a byte array
	// It returns the serialized byte array and an error if any
	Encode(v V) ([]byte, error)
	// Decode deserializes a byte array into a value
	// It returns an error if the bytes are not a valid encoding
	Decode(b []byte) (V, error)
}

// KeyCodec is the interface for map key codecs.
// Encodings must preserve order: a < b iff bytes.Compare(EncodeKey(a), EncodeKey(b)) < 0,
// because the map iterates in ascending order of the encoded keys.
type KeyCodec[K any] interface {
	EncodeKey(k K) []byte
	DecodeKey(b []byte) (K, error)
}

// ByName returns a value codec by its configuration name
// (json, gob, json+zstd, gob+zstd).
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case "json", "":
		return NewJSONCodec[V](), nil
	case "gob":
		return NewGOBCodec[V](), nil
	case "json+zstd":
		return NewZstdCodec[V](NewJSONCodec[V]())
	case "gob+zstd":
		return NewZstdCodec[V](NewGOBCodec[V]())
	default:
		return nil, &UnknownCodecError{Name: name}
	}
}

// UnknownCodecError is returned by ByName for an unsupported name.
type UnknownCodecError struct {
	Name string
}

func (e *UnknownCodecError) Error() string {
	return "invalid serializer " + e.Name + " (json, gob, json+zstd, gob+zstd)"
}
