package store

import (
	"encoding/binary"
	"os"
)

// Length header layout: 16 bytes (little-endian)
// 0..7  : uint64 element count
// 8..15 : uint64 element count (same value again)
//
// Both copies are written in one write. A torn or partial write leaves them
// unequal, which ReadLength reports as corruption instead of guessing.
const (
	headerFile = "len"
	headerSize = 16
)

// WriteLength writes n twice into the length header at path, creating the file
// if needed, and syncs it.
func WriteLength(path string, n uint64) error {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], n)
	binary.LittleEndian.PutUint64(buf[8:16], n)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return wrapError(RetCWriteError, err, "open length header %s", path)
	}
	if _, err := f.Write(buf[:]); err != nil {
		_ = f.Close()
		return wrapError(RetCWriteError, err, "write length header %s", path)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return wrapError(RetCWriteError, err, "sync length header %s", path)
	}
	if err := f.Close(); err != nil {
		return wrapError(RetCWriteError, err, "close length header %s", path)
	}
	return nil
}

// ReadLength reads the length header at path. Unequal copies or a short file
// yield a RetCCorruption error; the header is never repaired.
func ReadLength(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, wrapError(RetCReadError, err, "read length header %s", path)
	}
	if len(data) != headerSize {
		corruptionsTotal.Inc()
		return 0, wrapError(RetCCorruption, nil, "length header %s has %d bytes, want %d", path, len(data), headerSize)
	}

	n := binary.LittleEndian.Uint64(data[0:8])
	check := binary.LittleEndian.Uint64(data[8:16])
	if n != check {
		corruptionsTotal.Inc()
		return 0, wrapError(RetCCorruption, nil, "length header %s was corrupted (%d != %d)", path, n, check)
	}
	return n, nil
}
