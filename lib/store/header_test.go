package store

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLengthRoundTrip tests that a written length is read back unchanged
func TestLengthRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), headerFile)

	for _, n := range []uint64{0, 1, 42, 1 << 40, ^uint64(0)} {
		require.NoError(t, WriteLength(path, n))
		got, err := ReadLength(path)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, headerSize, info.Size())
}

// TestLengthMismatchIsCorruption tests that unequal copies are reported instead of resolved
func TestLengthMismatchIsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), headerFile)

	var buf [headerSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], 7)
	binary.LittleEndian.PutUint64(buf[8:16], 9)
	require.NoError(t, os.WriteFile(path, buf[:], 0o644))

	n, err := ReadLength(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruption))
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "7 != 9")
}

// TestLengthShortFile tests that a truncated header is corruption
func TestLengthShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), headerFile)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 3)
	require.NoError(t, os.WriteFile(path, buf[:], 0o644))

	_, err := ReadLength(path)
	assert.True(t, errors.Is(err, ErrCorruption))
}

// TestLengthMissingFile tests that a missing header is a read error wrapping os.ErrNotExist
func TestLengthMissingFile(t *testing.T) {
	_, err := ReadLength(filepath.Join(t.TempDir(), headerFile))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// TestWriteLengthFails tests that a write into a missing directory is a write error
func TestWriteLengthFails(t *testing.T) {
	err := WriteLength(filepath.Join(t.TempDir(), "missing", headerFile), 1)
	assert.True(t, errors.Is(err, ErrWrite))
}

// breakHeader replaces the length header of the instance at path with a
// directory, so every later header write fails even when running as root.
func breakHeader(t *testing.T, path string) {
	t.Helper()
	header := filepath.Join(path, headerFile)
	require.NoError(t, os.Remove(header))
	require.NoError(t, os.Mkdir(header, 0o755))
}
