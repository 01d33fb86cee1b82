package codec

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleBlock struct {
	Idx  int
	Data []int
	Note string
}

// testCodecs is a map of codec name to factory function
var testCodecs = map[string]func() (Codec[sampleBlock], error){
	"JSON": func() (Codec[sampleBlock], error) { return NewJSONCodec[sampleBlock](), nil },
	"GOB":  func() (Codec[sampleBlock], error) { return NewGOBCodec[sampleBlock](), nil },
	"JSON+zstd": func() (Codec[sampleBlock], error) {
		return NewZstdCodec[sampleBlock](NewJSONCodec[sampleBlock]())
	},
	"GOB+zstd": func() (Codec[sampleBlock], error) {
		return NewZstdCodec[sampleBlock](NewGOBCodec[sampleBlock]())
	},
}

func testBlocks() []sampleBlock {
	return []sampleBlock{
		{Idx: 0, Data: []int{0}},
		{Idx: 1, Data: []int{1, 2, 3}, Note: "with note"},
		{Idx: 42, Data: []int{math.MaxInt32, -1}},
		{Idx: 7, Data: make([]int, 1000), Note: strings.Repeat("x", 4096)},
	}
}

// TestCodecRoundTrip tests that values can be encoded and decoded correctly
func TestCodecRoundTrip(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c, err := factory()
			require.NoError(t, err)

			for i, block := range testBlocks() {
				data, err := c.Encode(block)
				require.NoError(t, err, "block %d", i)

				result, err := c.Decode(data)
				require.NoError(t, err, "block %d", i)
				assert.Equal(t, block, result, "block %d", i)
			}
		})
	}
}

// TestCodecRejectsGarbage tests that undecodable bytes surface as an error
func TestCodecRejectsGarbage(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c, err := factory()
			require.NoError(t, err)

			_, err = c.Decode([]byte{0xde, 0xad, 0xbe, 0xef})
			assert.Error(t, err)
		})
	}
}

func TestZstdCompresses(t *testing.T) {
	c, err := NewZstdCodec[string](NewJSONCodec[string]())
	require.NoError(t, err)

	value := strings.Repeat("ledger entry ", 1000)
	data, err := c.Encode(value)
	require.NoError(t, err)
	assert.Less(t, len(data), len(value)/10)
}

func TestRawCodecCopies(t *testing.T) {
	c := NewRawCodec()
	in := []byte("abc")

	out, err := c.Encode(in)
	require.NoError(t, err)
	out[0] = 'X'
	assert.Equal(t, []byte("abc"), in)

	dec, err := c.Decode(in)
	require.NoError(t, err)
	dec[0] = 'Y'
	assert.Equal(t, []byte("abc"), in)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "json", "gob", "json+zstd", "gob+zstd"} {
		c, err := ByName[int](name)
		require.NoError(t, err, name)

		data, err := c.Encode(7)
		require.NoError(t, err)
		v, err := c.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}

	_, err := ByName[int]("xml")
	var unknown *UnknownCodecError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "xml", unknown.Name)
}

// TestKeyOrder tests that key encodings preserve the natural order
func TestKeyOrder(t *testing.T) {
	t.Run("Int64", func(t *testing.T) {
		keys := []int64{math.MinInt64, -1000, -1, 0, 1, 255, 256, math.MaxInt64}
		assertOrdered(t, Int64Key{}, keys)
	})

	t.Run("Uint64", func(t *testing.T) {
		keys := []uint64{0, 1, 255, 256, 1 << 32, math.MaxUint64}
		assertOrdered(t, Uint64Key{}, keys)
	})

	t.Run("String", func(t *testing.T) {
		keys := []string{"", "a", "aa", "ab", "b"}
		assertOrdered(t, StringKey{}, keys)
	})

	t.Run("Bytes", func(t *testing.T) {
		keys := [][]byte{{}, {0}, {0, 1}, {1}, {0xff}}
		assertOrdered(t, BytesKey{}, keys)
	})
}

func assertOrdered[K any](t *testing.T, kc KeyCodec[K], sorted []K) {
	t.Helper()

	encoded := make([][]byte, len(sorted))
	for i, k := range sorted {
		encoded[i] = kc.EncodeKey(k)

		decoded, err := kc.DecodeKey(encoded[i])
		require.NoError(t, err)
		assert.Equal(t, k, decoded)
	}

	assert.True(t, sort.SliceIsSorted(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	}))
}

func TestFixedWidthKeyLength(t *testing.T) {
	_, err := Uint64Key{}.DecodeKey([]byte{1, 2})
	assert.Error(t, err)
	_, err = Int64Key{}.DecodeKey(nil)
	assert.Error(t, err)
}
