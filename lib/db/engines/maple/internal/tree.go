package internal

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// degree of the btree nodes
const degree = 32

// --------------------------------------------------------------------------
// Entry Type (key-value pair)
// --------------------------------------------------------------------------

// Entry is a key-value pair ordered bytewise by key
type Entry struct {
	Key   []byte
	Value []byte
}

// Less implements btree.Item
func (e Entry) Less(than btree.Item) bool {
	return bytes.Compare(e.Key, than.(Entry).Key) < 0
}

// --------------------------------------------------------------------------
// Tree Type (the data of one database)
// --------------------------------------------------------------------------

// Tree is an ordered in-memory key-value set guarded by a read-write lock.
// Keys and values are copied on the way in and on the way out.
type Tree struct {
	mu   sync.RWMutex
	bt   *btree.BTree
	size int // sum of key and value lengths
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{bt: btree.New(degree)}
}

// Set inserts or replaces key
func (t *Tree) Set(key, value []byte) {
	e := Entry{Key: bytes.Clone(key), Value: bytes.Clone(value)}
	if e.Value == nil {
		e.Value = []byte{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if old := t.bt.ReplaceOrInsert(e); old != nil {
		t.size -= entrySize(old.(Entry))
	}
	t.size += entrySize(e)
}

// Delete removes key, a missing key is ignored
func (t *Tree) Delete(key []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old := t.bt.Delete(Entry{Key: key}); old != nil {
		t.size -= entrySize(old.(Entry))
	}
}

// Get returns a copy of the value stored for key
func (t *Tree) Get(key []byte) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item := t.bt.Get(Entry{Key: key})
	if item == nil {
		return nil, false
	}
	return bytes.Clone(item.(Entry).Value), true
}

// Range visits lower <= key < upper in ascending order, nil bounds are open.
// The entries are copied under the read lock, fn runs without it, so fn may
// write to the tree.
func (t *Tree) Range(lower, upper []byte, fn func(key, value []byte) bool) {
	var batch []Entry

	t.mu.RLock()
	visit := func(item btree.Item) bool {
		e := item.(Entry)
		if upper != nil && bytes.Compare(e.Key, upper) >= 0 {
			return false
		}
		batch = append(batch, Entry{Key: bytes.Clone(e.Key), Value: bytes.Clone(e.Value)})
		return true
	}
	if lower == nil {
		t.bt.Ascend(visit)
	} else {
		t.bt.AscendGreaterOrEqual(Entry{Key: lower}, visit)
	}
	t.mu.RUnlock()

	for _, e := range batch {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Len returns the number of entries
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bt.Len()
}

// Size returns the sum of all key and value lengths
func (t *Tree) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

func entrySize(e Entry) int {
	return len(e.Key) + len(e.Value)
}
