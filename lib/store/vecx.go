package store

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ValentinKolb/fundb/lib/codec"
)

// --------------------------------------------------------------------------
// Disk vector
// --------------------------------------------------------------------------

// Vecx is a dense, 0-based, append-only vector stored on disk. The last
// min(capacity, len) elements are kept decoded in memory; reads of older
// elements go to the store.
//
// Thread-safety: Vecx is not thread-safe. A Vecx has exactly one owner, callers
// that share it between goroutines must lock around it.
type Vecx[V any] struct {
	h        *handle
	codec    codec.Codec[V]
	capacity *uint64
	window   *tailWindow[V]
	stats    *instanceStats
	clone    func(V) V
}

// NewVecx opens (or creates) the vector described by opts. An empty path is
// replaced by a unique path attributed to the caller.
func NewVecx[V any](opts *Options, c codec.Codec[V]) (*Vecx[V], error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return openVecx(opts.resolvePath(1), opts, c)
}

// RestoreVecx reopens the vector a Descriptor was taken from.
func RestoreVecx[V any](d Descriptor, c codec.Codec[V]) (*Vecx[V], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return openVecx(d.Path, d.Options(), c)
}

func openVecx[V any](path string, opts *Options, c codec.Codec[V]) (*Vecx[V], error) {
	if c == nil {
		return nil, wrapError(RetCInvalidOperation, nil, "no codec for %s", path)
	}
	h, err := openHandle(path, opts.Ephemeral, opts.Factory)
	if err != nil {
		return nil, err
	}

	v := &Vecx[V]{
		h:        h,
		codec:    c,
		capacity: opts.Capacity,
		window:   newTailWindow[V](windowLimit(opts.Capacity)),
		stats:    newInstanceStats(vecxHitsTotal, vecxMissesTotal),
		clone:    codecClone(c),
	}
	if err := v.prime(); err != nil {
		_ = h.close()
		return nil, err
	}
	return v, nil
}

// prime loads the tail [len-k, len) into the window with a single scan.
// An element that fails to decode shortens the window to the suffix after it;
// the error then surfaces from the reads of that element only.
func (v *Vecx[V]) prime() error {
	n := v.h.length
	k := n
	if limit := v.window.limit; limit != unbounded && uint64(limit) < n {
		k = uint64(limit)
	}
	if k == 0 {
		return nil
	}

	start := n - k
	expected := start
	entries := make([]V, 0, k)
	var scanErr error

	err := v.h.db.Range(indexKey(start), indexKey(n), func(key, value []byte) bool {
		idx := binary.BigEndian.Uint64(key)
		if idx != expected {
			scanErr = v.missing(expected)
			return false
		}
		expected++

		el, err := v.codec.Decode(value)
		if err != nil {
			plog.Warningf("%s: element %d does not decode, not cached: %v", v.h.path, idx, err)
			entries = entries[:0]
			start = idx + 1
			return true
		}
		entries = append(entries, el)
		v.stats.sizes.AddSample(len(value))
		return true
	})
	if err != nil {
		return wrapError(RetCReadError, err, "prime %s", v.h.path)
	}
	if scanErr != nil {
		return scanErr
	}
	if expected != n {
		return v.missing(expected)
	}

	v.window.reset(start, entries)
	return nil
}

// Push appends el. The element is written first, then the length header, then
// the window; if a write fails the vector is left as it was.
func (v *Vecx[V]) Push(el V) error {
	if err := v.h.check(); err != nil {
		return err
	}

	b, err := v.codec.Encode(el)
	if err != nil {
		return wrapError(RetCInvalidOperation, err, "encode element %d", v.h.length)
	}

	idx := v.h.length
	if err := v.h.db.Set(indexKey(idx), b); err != nil {
		return wrapError(RetCWriteError, err, "write element %d", idx)
	}
	if err := v.h.setLength(idx + 1); err != nil {
		return err
	}

	v.window.push(idx, el)
	v.stats.sizes.AddSample(len(b))
	return nil
}

// Get returns the element at index i. A cached element is returned borrowed,
// any other element is decoded from the store. i >= Len() yields false and no
// error.
func (v *Vecx[V]) Get(i uint64) (Value[V], bool, error) {
	if err := v.h.check(); err != nil {
		return Value[V]{}, false, err
	}
	if i >= v.h.length {
		return Value[V]{}, false, nil
	}

	if el, ok := v.window.get(i); ok {
		v.stats.hit()
		return borrowedValue(el, v.clone), true, nil
	}
	v.stats.miss()

	el, err := v.load(i)
	if err != nil {
		return Value[V]{}, false, err
	}
	return ownedValue(el), true, nil
}

// Last returns the most recently pushed element, false if the vector is empty.
func (v *Vecx[V]) Last() (Value[V], bool, error) {
	if err := v.h.check(); err != nil {
		return Value[V]{}, false, err
	}
	if v.h.length == 0 {
		return Value[V]{}, false, nil
	}
	return v.Get(v.h.length - 1)
}

// load reads and decodes element i from the store. i must be below len.
func (v *Vecx[V]) load(i uint64) (V, error) {
	var zero V
	b, ok, err := v.h.db.Get(indexKey(i))
	if err != nil {
		return zero, wrapError(RetCReadError, err, "read element %d", i)
	}
	if !ok {
		return zero, v.missing(i)
	}
	el, err := v.codec.Decode(b)
	if err != nil {
		return zero, wrapError(RetCDecodeError, err, "decode element %d", i)
	}
	return el, nil
}

func (v *Vecx[V]) missing(i uint64) error {
	corruptionsTotal.Inc()
	return wrapError(RetCCorruption, nil, "%s: element %d is missing (len=%d)", v.h.path, i, v.h.length)
}

// Len returns the number of elements.
func (v *Vecx[V]) Len() uint64 {
	return v.h.length
}

// IsEmpty reports whether the vector has no elements.
func (v *Vecx[V]) IsEmpty() bool {
	return v.h.length == 0
}

// Descriptor returns the serializable projection of the vector.
func (v *Vecx[V]) Descriptor() Descriptor {
	return descriptorOf(v.h, v.capacity)
}

// Stats returns the cache and size statistics of this instance.
func (v *Vecx[V]) Stats() Stats {
	return v.stats.snapshot(v.h, v.window.len(), v.capacity)
}

// Close releases the store. An ephemeral vector deletes its directory.
func (v *Vecx[V]) Close() error {
	v.window.reset(0, nil)
	return v.h.close()
}

// MarshalJSON encodes the Descriptor, never the elements.
func (v *Vecx[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Descriptor())
}

// UnmarshalJSON restores the vector from an encoded Descriptor. Elements are
// decoded with the JSON codec.
func (v *Vecx[V]) UnmarshalJSON(data []byte) error {
	if v.h != nil && v.h.db != nil {
		return wrapError(RetCInvalidOperation, nil, "vector at %s is still open", v.h.path)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return wrapError(RetCInvalidOperation, err, "decode descriptor")
	}
	restored, err := RestoreVecx(d, codec.NewJSONCodec[V]())
	if err != nil {
		return err
	}
	*v = *restored
	return nil
}

// --------------------------------------------------------------------------
// Iterator
// --------------------------------------------------------------------------

// VecxIter walks the indices [0, len) in order, len taken when the iterator is
// created or reset. It applies the same hit and miss rule as Get.
//
// Example:
//
//	it := vec.Iter()
//	for it.Next() {
//		fmt.Println(it.Index(), it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
type VecxIter[V any] struct {
	vec    *Vecx[V]
	next   uint64
	end    uint64
	idx    uint64
	cur    Value[V]
	err    error
	hits   int
	misses int
}

// Iter returns a new iterator positioned before the first element.
func (v *Vecx[V]) Iter() *VecxIter[V] {
	it := &VecxIter[V]{vec: v}
	it.Reset()
	return it
}

// Next advances to the next element. It returns false at the end or after an
// error; values yielded before the error stay valid.
func (it *VecxIter[V]) Next() bool {
	if it.err != nil || it.next >= it.end {
		return false
	}
	if err := it.vec.h.check(); err != nil {
		it.err = err
		return false
	}

	i := it.next
	if el, ok := it.vec.window.get(i); ok {
		it.vec.stats.hit()
		it.hits++
		it.cur = borrowedValue(el, it.vec.clone)
	} else {
		it.vec.stats.miss()
		it.misses++
		el, err := it.vec.load(i)
		if err != nil {
			it.err = err
			return false
		}
		it.cur = ownedValue(el)
	}
	it.idx = i
	it.next++
	return true
}

// Value returns the current element.
func (it *VecxIter[V]) Value() Value[V] { return it.cur }

// Index returns the index of the current element.
func (it *VecxIter[V]) Index() uint64 { return it.idx }

// Err returns the error that stopped the iteration, if any.
func (it *VecxIter[V]) Err() error { return it.err }

// Hits returns the number of elements served from the window since the last reset.
func (it *VecxIter[V]) Hits() int { return it.hits }

// Misses returns the number of elements read from the store since the last reset.
func (it *VecxIter[V]) Misses() int { return it.misses }

// Reset rewinds the iterator and takes a new length snapshot.
func (it *VecxIter[V]) Reset() {
	it.next, it.idx = 0, 0
	it.end = it.vec.h.length
	it.cur = Value[V]{}
	it.err = nil
	it.hits, it.misses = 0, 0
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// indexKey encodes i big-endian so that key order is index order.
func indexKey(i uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b[:]
}

// codecClone deep copies a value by encoding and decoding it. If either step
// fails the value is returned as is.
func codecClone[V any](c codec.Codec[V]) func(V) V {
	return func(v V) V {
		b, err := c.Encode(v)
		if err != nil {
			return v
		}
		out, err := c.Decode(b)
		if err != nil {
			return v
		}
		return out
	}
}
