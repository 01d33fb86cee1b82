package store

import (
	"bytes"
	"encoding/json"

	"github.com/ValentinKolb/fundb/lib/codec"
)

// iterBatch is the number of entries a MapxIter reads from the store per scan.
const iterBatch = 64

// --------------------------------------------------------------------------
// Disk map
// --------------------------------------------------------------------------

// Mapx is an ordered key-value map stored on disk. Keys are ordered by their
// encoded bytes, so the key codec decides the iteration order. Up to capacity
// entries are kept decoded in memory; when the window is full the least
// recently used entry is evicted. Insert and Get (hit or miss) count as a use,
// Has and iteration do not.
//
// Values passed to Insert belong to the map afterwards and must not be mutated.
//
// Thread-safety: Mapx is not thread-safe. A Mapx has exactly one owner, callers
// that share it between goroutines must lock around it.
type Mapx[K, V any] struct {
	h        *handle
	keys     codec.KeyCodec[K]
	codec    codec.Codec[V]
	capacity *uint64
	window   *keyedWindow[V]
	stats    *instanceStats
	clone    func(V) V
}

// NewMapx opens (or creates) the map described by opts. An empty path is
// replaced by a unique path attributed to the caller.
func NewMapx[K, V any](opts *Options, kc codec.KeyCodec[K], vc codec.Codec[V]) (*Mapx[K, V], error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return openMapx(opts.resolvePath(1), opts, kc, vc)
}

// RestoreMapx reopens the map a Descriptor was taken from. The window starts
// empty and fills as entries are used.
func RestoreMapx[K, V any](d Descriptor, kc codec.KeyCodec[K], vc codec.Codec[V]) (*Mapx[K, V], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return openMapx(d.Path, d.Options(), kc, vc)
}

func openMapx[K, V any](path string, opts *Options, kc codec.KeyCodec[K], vc codec.Codec[V]) (*Mapx[K, V], error) {
	if kc == nil || vc == nil {
		return nil, wrapError(RetCInvalidOperation, nil, "no codec for %s", path)
	}
	h, err := openHandle(path, opts.Ephemeral, opts.Factory)
	if err != nil {
		return nil, err
	}
	return &Mapx[K, V]{
		h:        h,
		keys:     kc,
		codec:    vc,
		capacity: opts.Capacity,
		window:   newKeyedWindow[V](windowLimit(opts.Capacity)),
		stats:    newInstanceStats(mapxHitsTotal, mapxMissesTotal),
		clone:    codecClone(vc),
	}, nil
}

// Get returns the value stored for k. A cached entry is returned borrowed; a
// miss decodes the entry from the store and caches it.
func (m *Mapx[K, V]) Get(k K) (Value[V], bool, error) {
	if err := m.h.check(); err != nil {
		return Value[V]{}, false, err
	}
	key := m.keys.EncodeKey(k)

	if el, ok := m.window.get(string(key), true); ok {
		m.stats.hit()
		return borrowedValue(el, m.clone), true, nil
	}
	m.stats.miss()

	b, ok, err := m.h.db.Get(key)
	if err != nil {
		return Value[V]{}, false, wrapError(RetCReadError, err, "read key %x", key)
	}
	if !ok {
		return Value[V]{}, false, nil
	}

	// one copy for the window, one for the caller
	cached, err := m.codec.Decode(b)
	if err != nil {
		return Value[V]{}, false, wrapError(RetCDecodeError, err, "decode key %x", key)
	}
	owned, err := m.copyOf(cached, b)
	if err != nil {
		return Value[V]{}, false, wrapError(RetCDecodeError, err, "decode key %x", key)
	}
	m.window.put(string(key), cached)
	return ownedValue(owned), true, nil
}

// copyOf returns a second, unshared copy of el. Clone is used when V
// implements Cloner, otherwise the stored bytes b are decoded again.
func (m *Mapx[K, V]) copyOf(el V, b []byte) (V, error) {
	if c, ok := any(el).(Cloner[V]); ok {
		return c.Clone(), nil
	}
	return m.codec.Decode(b)
}

// Has reports whether k is present without changing the window.
func (m *Mapx[K, V]) Has(k K) (bool, error) {
	if err := m.h.check(); err != nil {
		return false, err
	}
	key := m.keys.EncodeKey(k)
	if _, ok := m.window.get(string(key), false); ok {
		return true, nil
	}
	_, ok, err := m.h.db.Get(key)
	if err != nil {
		return false, wrapError(RetCReadError, err, "read key %x", key)
	}
	return ok, nil
}

// Insert stores v under k, overwriting an existing entry. It reports whether
// an entry was replaced.
func (m *Mapx[K, V]) Insert(k K, v V) (bool, error) {
	if err := m.h.check(); err != nil {
		return false, err
	}
	key := m.keys.EncodeKey(k)

	b, err := m.codec.Encode(v)
	if err != nil {
		return false, wrapError(RetCInvalidOperation, err, "encode key %x", key)
	}

	exists, err := m.exists(key)
	if err != nil {
		return false, err
	}

	if err := m.h.db.Set(key, b); err != nil {
		return false, wrapError(RetCWriteError, err, "write key %x", key)
	}
	if !exists {
		if err := m.h.setLength(m.h.length + 1); err != nil {
			// keep the store consistent with the unchanged count
			if derr := m.h.db.Delete(key); derr != nil {
				plog.Errorf("%s: could not undo insert of %x: %v", m.h.path, key, derr)
			}
			return false, err
		}
	}

	m.window.put(string(key), v)
	m.stats.sizes.AddSample(len(b))
	return exists, nil
}

// Remove deletes k. It reports whether an entry was removed.
func (m *Mapx[K, V]) Remove(k K) (bool, error) {
	if err := m.h.check(); err != nil {
		return false, err
	}
	key := m.keys.EncodeKey(k)

	old, ok, err := m.h.db.Get(key)
	if err != nil {
		return false, wrapError(RetCReadError, err, "read key %x", key)
	}
	if !ok {
		m.window.remove(string(key))
		return false, nil
	}
	if m.h.length == 0 {
		corruptionsTotal.Inc()
		return false, wrapError(RetCCorruption, nil, "%s: key %x exists but len is 0", m.h.path, key)
	}

	if err := m.h.db.Delete(key); err != nil {
		return false, wrapError(RetCWriteError, err, "delete key %x", key)
	}
	if err := m.h.setLength(m.h.length - 1); err != nil {
		if serr := m.h.db.Set(key, old); serr != nil {
			plog.Errorf("%s: could not undo remove of %x: %v", m.h.path, key, serr)
		}
		return false, err
	}

	m.window.remove(string(key))
	return true, nil
}

func (m *Mapx[K, V]) exists(key []byte) (bool, error) {
	if _, ok := m.window.get(string(key), false); ok {
		return true, nil
	}
	_, ok, err := m.h.db.Get(key)
	if err != nil {
		return false, wrapError(RetCReadError, err, "read key %x", key)
	}
	return ok, nil
}

// Len returns the number of entries.
func (m *Mapx[K, V]) Len() uint64 {
	return m.h.length
}

// IsEmpty reports whether the map has no entries.
func (m *Mapx[K, V]) IsEmpty() bool {
	return m.h.length == 0
}

// Descriptor returns the serializable projection of the map.
func (m *Mapx[K, V]) Descriptor() Descriptor {
	return descriptorOf(m.h, m.capacity)
}

// MarshalJSON encodes the Descriptor, never the entries. Restore with
// RestoreMapx, which needs the key codec.
func (m *Mapx[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Descriptor())
}

// Stats returns the cache and size statistics of this instance.
func (m *Mapx[K, V]) Stats() Stats {
	return m.stats.snapshot(m.h, m.window.len(), m.capacity)
}

// Close releases the store. An ephemeral map deletes its directory.
func (m *Mapx[K, V]) Close() error {
	m.window.clear()
	return m.h.close()
}

// --------------------------------------------------------------------------
// Iterator
// --------------------------------------------------------------------------

type rawEntry struct {
	key   []byte
	value []byte
}

// MapxIter walks the map in ascending encoded-key order, reading the store in
// batches. Cached entries are served from the window without changing their
// recency. Mutating the map during iteration is allowed but entries of the
// current batch are not refreshed.
type MapxIter[K, V any] struct {
	m      *Mapx[K, V]
	batch  []rawEntry
	pos    int
	lower  []byte
	done   bool
	key    K
	cur    Value[V]
	err    error
	hits   int
	misses int
}

// Iter returns a new iterator positioned before the first entry.
func (m *Mapx[K, V]) Iter() *MapxIter[K, V] {
	it := &MapxIter[K, V]{m: m}
	it.Reset()
	return it
}

// Next advances to the next entry. It returns false at the end or after an
// error; entries yielded before the error stay valid.
func (it *MapxIter[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if err := it.m.h.check(); err != nil {
		it.err = err
		return false
	}
	if it.pos >= len(it.batch) {
		if it.done || !it.fill() {
			return false
		}
	}

	e := it.batch[it.pos]
	it.pos++

	k, err := it.m.keys.DecodeKey(e.key)
	if err != nil {
		it.err = wrapError(RetCDecodeError, err, "decode key %x", e.key)
		return false
	}

	if el, ok := it.m.window.get(string(e.key), false); ok {
		it.m.stats.hit()
		it.hits++
		it.cur = borrowedValue(el, it.m.clone)
	} else {
		it.m.stats.miss()
		it.misses++
		el, err := it.m.codec.Decode(e.value)
		if err != nil {
			it.err = wrapError(RetCDecodeError, err, "decode key %x", e.key)
			return false
		}
		it.cur = ownedValue(el)
	}
	it.key = k
	return true
}

// fill reads the next batch. It returns false when there is nothing left.
func (it *MapxIter[K, V]) fill() bool {
	it.batch = it.batch[:0]
	it.pos = 0

	err := it.m.h.db.Range(it.lower, nil, func(key, value []byte) bool {
		it.batch = append(it.batch, rawEntry{key: key, value: value})
		return len(it.batch) < iterBatch
	})
	if err != nil {
		it.err = wrapError(RetCReadError, err, "scan %s", it.m.h.path)
		return false
	}

	if len(it.batch) < iterBatch {
		it.done = true
	}
	if len(it.batch) == 0 {
		return false
	}
	// the smallest key after the last one read
	last := it.batch[len(it.batch)-1].key
	it.lower = append(bytes.Clone(last), 0x00)
	return true
}

// Key returns the key of the current entry.
func (it *MapxIter[K, V]) Key() K { return it.key }

// Value returns the value of the current entry.
func (it *MapxIter[K, V]) Value() Value[V] { return it.cur }

// Err returns the error that stopped the iteration, if any.
func (it *MapxIter[K, V]) Err() error { return it.err }

// Hits returns the number of entries served from the window since the last reset.
func (it *MapxIter[K, V]) Hits() int { return it.hits }

// Misses returns the number of entries decoded from the store since the last reset.
func (it *MapxIter[K, V]) Misses() int { return it.misses }

// Reset rewinds the iterator to the smallest key.
func (it *MapxIter[K, V]) Reset() {
	it.batch = it.batch[:0]
	it.pos = 0
	it.lower = nil
	it.done = false
	var zero K
	it.key = zero
	it.cur = Value[V]{}
	it.err = nil
	it.hits, it.misses = 0, 0
}
