package codec

// NewRawCodec creates a codec for values that already are bytes.
// Both directions copy, so neither side can alias the other's buffer.
func NewRawCodec() Codec[[]byte] {
	return rawCodecImpl{}
}

type rawCodecImpl struct{}

func (rawCodecImpl) Encode(v []byte) ([]byte, error) {
	return append([]byte{}, v...), nil
}

func (rawCodecImpl) Decode(b []byte) ([]byte, error) {
	return append([]byte{}, b...), nil
}
