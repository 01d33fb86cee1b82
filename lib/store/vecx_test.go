package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/fundb/lib/codec"
	"github.com/ValentinKolb/fundb/lib/db/engines/maple"
	"github.com/ValentinKolb/fundb/lib/db/engines/pebbledb"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// block is a ledger-like element used throughout the tests
type block struct {
	Height uint64
	Hash   string
	Txs    []string
}

func blockCodec() codec.Codec[block] {
	return codec.NewGOBCodec[block]()
}

func randomBlocks(n int) []block {
	f := fuzz.New().NilChance(0).NumElements(1, 4)
	out := make([]block, n)
	for i := range out {
		f.Fuzz(&out[i])
		out[i].Height = uint64(i)
	}
	return out
}

func newTestVecx(t *testing.T, opts *Options) *Vecx[block] {
	t.Helper()
	if opts.Path == "" {
		opts.WithPath(filepath.Join(t.TempDir(), "vec"))
	}
	vec, err := NewVecx(opts, blockCodec())
	require.NoError(t, err)
	t.Cleanup(func() { _ = vec.Close() })
	return vec
}

// TestVecxPushGet tests that every pushed element is returned at its index
func TestVecxPushGet(t *testing.T) {
	for _, capacity := range []uint64{0, 1, 7, 1000} {
		vec := newTestVecx(t, DefaultOptions().WithCapacity(capacity))
		blocks := randomBlocks(50)

		for _, b := range blocks {
			require.NoError(t, vec.Push(b))
		}
		require.EqualValues(t, len(blocks), vec.Len())

		for i, b := range blocks {
			v, ok, err := vec.Get(uint64(i))
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, v.Equal(b), "capacity %d index %d", capacity, i)
		}
	}
}

// TestVecxRestore tests that a durable vector restored from its descriptor is identical
func TestVecxRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec")
	vec, err := NewVecx(DefaultOptions().WithPath(path).WithCapacity(4), blockCodec())
	require.NoError(t, err)

	blocks := randomBlocks(20)
	for _, b := range blocks {
		require.NoError(t, vec.Push(b))
	}
	d := vec.Descriptor()
	require.NoError(t, vec.Close())

	restored, err := RestoreVecx(d, blockCodec())
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, d, restored.Descriptor())
	require.EqualValues(t, len(blocks), restored.Len())
	for i, b := range blocks {
		v, ok, err := restored.Get(uint64(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, v.Equal(b))
	}
}

// TestVecxCacheAccounting tests hits and misses of a full iteration after a restore
func TestVecxCacheAccounting(t *testing.T) {
	tests := []struct {
		capacity uint64
		hits     int
		misses   int
	}{
		{capacity: 3, hits: 3, misses: 2},
		{capacity: 30, hits: 5, misses: 0},
		{capacity: 0, hits: 0, misses: 5},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "vec")
		vec, err := NewVecx(DefaultOptions().WithPath(path).WithCapacity(tt.capacity), codec.NewJSONCodec[int]())
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			require.NoError(t, vec.Push(i))
		}
		d := vec.Descriptor()
		require.NoError(t, vec.Close())

		restored, err := RestoreVecx(d, codec.NewJSONCodec[int]())
		require.NoError(t, err)

		it := restored.Iter()
		var seen []int
		for it.Next() {
			assert.Equal(t, uint64(len(seen)), it.Index())
			seen = append(seen, it.Value().Get())
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
		assert.Equal(t, tt.hits, it.Hits(), "capacity %d", tt.capacity)
		assert.Equal(t, tt.misses, it.Misses(), "capacity %d", tt.capacity)

		stats := restored.Stats()
		assert.EqualValues(t, tt.hits, stats.Hits)
		assert.EqualValues(t, tt.misses, stats.Misses)

		// restartable with the same accounting
		it.Reset()
		n := 0
		for it.Next() {
			n++
		}
		assert.Equal(t, 5, n)
		assert.Equal(t, tt.hits, it.Hits())

		require.NoError(t, restored.Close())
	}
}

// TestVecxWindowIsTail tests that the window is the suffix and misses never enter it
func TestVecxWindowIsTail(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions().WithCapacity(2))
	for _, b := range randomBlocks(5) {
		require.NoError(t, vec.Push(b))
	}

	for _, i := range []uint64{3, 4} {
		v, ok, err := vec.Get(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, v.IsBorrowed(), "index %d", i)
	}
	for n := 0; n < 2; n++ {
		v, ok, err := vec.Get(2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, v.IsBorrowed())
	}

	assert.EqualValues(t, 3, vec.window.start)
	assert.Equal(t, 2, vec.window.len())

	require.NoError(t, vec.Push(block{Height: 5}))
	assert.EqualValues(t, 4, vec.window.start)
	last, ok, err := vec.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.IsBorrowed())
	assert.EqualValues(t, 5, last.Get().Height)
}

// TestVecxUnbounded tests that an unbounded vector caches everything
func TestVecxUnbounded(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions())
	for _, b := range randomBlocks(30) {
		require.NoError(t, vec.Push(b))
	}
	assert.Equal(t, 30, vec.Stats().Cached)
	assert.Nil(t, vec.Descriptor().Capacity)

	it := vec.Iter()
	for it.Next() {
	}
	assert.Equal(t, 30, it.Hits())
	assert.Zero(t, it.Misses())
}

// TestVecxOutOfRange tests that reads past the end are empty, not errors
func TestVecxOutOfRange(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions().WithCapacity(2))

	_, ok, err := vec.Last()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, vec.IsEmpty())

	for _, b := range randomBlocks(3) {
		require.NoError(t, vec.Push(b))
	}
	for _, i := range []uint64{3, 4, 1 << 32, ^uint64(0)} {
		_, ok, err := vec.Get(i)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

// TestVecxEphemeral tests that an ephemeral vector leaves nothing behind
func TestVecxEphemeral(t *testing.T) {
	engines := map[string]DBFactory{
		"pebble": pebbledb.Open,
		"maple":  maple.Open,
	}
	for name, factory := range engines {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vec")
			opts := DefaultOptions().WithPath(path).WithEphemeral(true).WithFactory(factory)
			vec, err := NewVecx(opts, blockCodec())
			require.NoError(t, err)
			for _, b := range randomBlocks(3) {
				require.NoError(t, vec.Push(b))
			}
			assert.True(t, vec.Descriptor().Ephemeral)
			require.NoError(t, vec.Close())
			assert.NoDirExists(t, path)

			reopened, err := NewVecx(DefaultOptions().WithPath(path).WithFactory(factory), blockCodec())
			require.NoError(t, err)
			defer reopened.Close()
			assert.Zero(t, reopened.Len())
			_, ok, err := reopened.Get(0)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// TestVecxPathInUse tests that one path cannot back two live collections
func TestVecxPathInUse(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions())

	_, err := NewVecx(DefaultOptions().WithPath(vec.Descriptor().Path), blockCodec())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpen))

	_, err = NewMapx[string, block](DefaultOptions().WithPath(vec.Descriptor().Path), codec.StringKey{}, blockCodec())
	assert.True(t, errors.Is(err, ErrOpen))

	// released on close
	d := vec.Descriptor()
	require.NoError(t, vec.Close())
	again, err := RestoreVecx(d, blockCodec())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

// TestVecxCorruptHeader tests that a damaged length header fails the construction
func TestVecxCorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec")
	vec, err := NewVecx(DefaultOptions().WithPath(path), blockCodec())
	require.NoError(t, err)
	require.NoError(t, vec.Push(block{Height: 1}))
	require.NoError(t, vec.Close())

	header := filepath.Join(path, headerFile)
	data, err := os.ReadFile(header)
	require.NoError(t, err)
	data[8]++
	require.NoError(t, os.WriteFile(header, data, 0o644))

	_, err = NewVecx(DefaultOptions().WithPath(path), blockCodec())
	assert.True(t, errors.Is(err, ErrCorruption))

	// a missing header with data present is corruption as well
	require.NoError(t, os.Remove(header))
	_, err = NewVecx(DefaultOptions().WithPath(path), blockCodec())
	assert.True(t, errors.Is(err, ErrCorruption))

	// the failed opens released the path
	require.NoError(t, WriteLength(header, 1))
	repaired, err := NewVecx(DefaultOptions().WithPath(path), blockCodec())
	require.NoError(t, err)
	assert.EqualValues(t, 1, repaired.Len())
	require.NoError(t, repaired.Close())
}

// TestVecxMissingElement tests that a header ahead of the elements is corruption
func TestVecxMissingElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec")
	vec, err := NewVecx(DefaultOptions().WithPath(path).WithCapacity(0), blockCodec())
	require.NoError(t, err)
	require.NoError(t, vec.Push(block{Height: 1}))
	require.NoError(t, vec.Close())

	require.NoError(t, WriteLength(filepath.Join(path, headerFile), 3))

	// not primed, so the open succeeds and the read fails
	vec, err = NewVecx(DefaultOptions().WithPath(path).WithCapacity(0), blockCodec())
	require.NoError(t, err)
	_, _, err = vec.Get(2)
	assert.True(t, errors.Is(err, ErrCorruption))
	require.NoError(t, vec.Close())

	// primed, so the open fails
	_, err = NewVecx(DefaultOptions().WithPath(path).WithCapacity(10), blockCodec())
	assert.True(t, errors.Is(err, ErrCorruption))
}

// TestVecxDecodeFailure tests that an undecodable element only fails its own reads
func TestVecxDecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec")
	vec, err := NewVecx(DefaultOptions().WithPath(path), codec.NewJSONCodec[int]())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, vec.Push(i))
	}
	require.NoError(t, vec.Close())

	kv, err := pebbledb.Open(path, false)
	require.NoError(t, err)
	require.NoError(t, kv.Set(indexKey(1), []byte("{not json")))
	require.NoError(t, kv.Close())

	for _, capacity := range []uint64{0, 10} {
		vec, err := NewVecx(DefaultOptions().WithPath(path).WithCapacity(capacity), codec.NewJSONCodec[int]())
		require.NoError(t, err)

		_, _, err = vec.Get(1)
		assert.True(t, errors.Is(err, ErrDecode))
		for _, i := range []uint64{0, 2, 3} {
			v, ok, err := vec.Get(i)
			require.NoError(t, err)
			require.True(t, ok)
			assert.EqualValues(t, i, v.Get())
		}

		it := vec.Iter()
		var seen []int
		for it.Next() {
			seen = append(seen, it.Value().Get())
		}
		assert.Equal(t, []int{0}, seen)
		assert.True(t, errors.Is(it.Err(), ErrDecode))
		assert.False(t, it.Next())

		before := vec.Len()
		require.NoError(t, vec.Push(4))
		assert.Equal(t, before+1, vec.Len())
		require.NoError(t, vec.Close())
	}
}

// TestVecxJSON tests that JSON carries the descriptor and restores the vector
func TestVecxJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec")
	vec, err := NewVecx(DefaultOptions().WithPath(path).WithCapacity(2), codec.NewJSONCodec[string]())
	require.NoError(t, err)
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, vec.Push(s))
	}

	data, err := json.Marshal(vec)
	require.NoError(t, err)
	absPath, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"`+absPath+`","capacity":2,"ephemeral":false}`, string(data))
	require.NoError(t, vec.Close())

	var restored Vecx[string]
	require.NoError(t, json.Unmarshal(data, &restored))
	defer restored.Close()

	assert.EqualValues(t, 3, restored.Len())
	v, ok, err := restored.Get(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v.Get())

	// cannot unmarshal into an open vector
	assert.True(t, errors.Is(json.Unmarshal(data, &restored), ErrInvalidOperation))
}

// TestVecxClosed tests that a closed vector refuses all operations
func TestVecxClosed(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions())
	require.NoError(t, vec.Push(block{}))
	require.NoError(t, vec.Close())
	require.NoError(t, vec.Close())

	assert.True(t, errors.Is(vec.Push(block{}), ErrInvalidOperation))
	_, _, err := vec.Get(0)
	assert.True(t, errors.Is(err, ErrInvalidOperation))
	it := vec.Iter()
	assert.False(t, it.Next())
	assert.True(t, errors.Is(it.Err(), ErrInvalidOperation))
}

// TestVecxTakeDoesNotAliasWindow tests that a taken value can be mutated freely
func TestVecxTakeDoesNotAliasWindow(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions().WithCapacity(4))
	require.NoError(t, vec.Push(block{Height: 1, Txs: []string{"tx"}}))

	v, _, err := vec.Get(0)
	require.NoError(t, err)
	require.True(t, v.IsBorrowed())

	taken := v.Take()
	taken.Txs[0] = "changed"

	again, _, err := vec.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "tx", again.Get().Txs[0])
}

// TestVecxGeneratedPath tests that an empty path is generated below the base dir
func TestVecxGeneratedPath(t *testing.T) {
	base := t.TempDir()
	vec, err := NewVecx(DefaultOptions().WithBaseDir(base).WithEphemeral(true), blockCodec())
	require.NoError(t, err)
	defer vec.Close()

	path := vec.Descriptor().Path
	assert.True(t, strings.HasPrefix(path, filepath.Join(base, pathRoot)), path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "vecx_test.go_"), path)
}

// TestVecxStats tests the per instance statistics
func TestVecxStats(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions().WithCapacity(1))
	for _, b := range randomBlocks(3) {
		require.NoError(t, vec.Push(b))
	}
	_, _, _ = vec.Get(2)
	_, _, _ = vec.Get(0)

	stats := vec.Stats()
	assert.EqualValues(t, 3, stats.Len)
	assert.Equal(t, 1, stats.Cached)
	assert.EqualValues(t, 1, *stats.Capacity)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 3, stats.Sizes.Count)
	assert.Equal(t, vec.Descriptor().Path, stats.DB.Path)

	// the snapshot does not share the capacity of the vector
	*stats.Capacity = 99
	assert.EqualValues(t, 1, *vec.Stats().Capacity)
	assert.EqualValues(t, 1, *vec.Descriptor().Capacity)
}

// TestVecxPushHeaderWriteFails tests that a failed header write leaves the vector unchanged
func TestVecxPushHeaderWriteFails(t *testing.T) {
	vec := newTestVecx(t, DefaultOptions().WithCapacity(4))
	blocks := randomBlocks(2)
	require.NoError(t, vec.Push(blocks[0]))

	breakHeader(t, vec.Descriptor().Path)

	err := vec.Push(blocks[1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))

	assert.EqualValues(t, 1, vec.Len())
	assert.Equal(t, 1, vec.Stats().Cached)
	last, ok, err := vec.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.Equal(blocks[0]))
	_, ok, err = vec.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)
}
