package store

import (
	"container/heap"
	"math"

	"github.com/ValentinKolb/fundb/lib/db/util"
)

// unbounded is the window limit used when no capacity is configured
const unbounded = -1

// windowLimit converts an optional capacity into a window limit.
func windowLimit(capacity *uint64) int {
	if capacity == nil || *capacity > math.MaxInt {
		return unbounded
	}
	return int(*capacity)
}

// --------------------------------------------------------------------------
// Tail window (vector)
// --------------------------------------------------------------------------

// tailWindow caches the decoded elements with indices [start, start+len(entries)).
// The vector keeps it equal to the suffix [len-k, len), k = min(limit, len).
//
// Not thread-safe.
type tailWindow[V any] struct {
	limit   int
	start   uint64
	entries []V
}

func newTailWindow[V any](limit int) *tailWindow[V] {
	return &tailWindow[V]{limit: limit}
}

// get returns the cached element at index i.
func (w *tailWindow[V]) get(i uint64) (V, bool) {
	if i < w.start || i-w.start >= uint64(len(w.entries)) {
		var zero V
		return zero, false
	}
	return w.entries[i-w.start], true
}

// push appends the element at index i, which must directly follow the window,
// and evicts the lowest indices while the window is over its limit.
func (w *tailWindow[V]) push(i uint64, v V) {
	if len(w.entries) == 0 {
		w.start = i
	}
	w.entries = append(w.entries, v)

	for w.limit != unbounded && len(w.entries) > w.limit {
		var zero V
		w.entries[0] = zero
		w.entries = w.entries[1:]
		w.start++
	}
}

// reset replaces the window content with entries starting at index start.
func (w *tailWindow[V]) reset(start uint64, entries []V) {
	w.start = start
	w.entries = entries
}

func (w *tailWindow[V]) len() int {
	return len(w.entries)
}

// --------------------------------------------------------------------------
// Keyed window (map)
// --------------------------------------------------------------------------

// keyedWindow caches decoded map entries by encoded key, evicting the least
// recently used entry once the limit is exceeded. Recency is a logical clock
// that strictly increases on every touch, so the victim is always unique.
//
// Not thread-safe.
type keyedWindow[V any] struct {
	limit   int
	clock   uint64
	entries map[string]V
	recency *util.MapHeap[string]
}

func newKeyedWindow[V any](limit int) *keyedWindow[V] {
	recency := util.NewMapHeap[string]()
	heap.Init(recency)
	return &keyedWindow[V]{
		limit:   limit,
		entries: make(map[string]V),
		recency: recency,
	}
}

// get returns the cached entry; touch marks it as most recently used.
func (w *keyedWindow[V]) get(key string, touch bool) (V, bool) {
	v, ok := w.entries[key]
	if ok && touch {
		w.touch(key)
	}
	return v, ok
}

// put inserts or overwrites an entry, marks it most recently used and
// evicts until the window fits its limit. It returns the evicted keys.
func (w *keyedWindow[V]) put(key string, v V) []string {
	if w.limit == 0 {
		return nil
	}
	w.entries[key] = v
	w.touch(key)

	var evicted []string
	for w.limit != unbounded && len(w.entries) > w.limit {
		victim, _, ok := w.recency.PopMin()
		if !ok {
			break
		}
		delete(w.entries, victim)
		evicted = append(evicted, victim)
	}
	return evicted
}

func (w *keyedWindow[V]) remove(key string) {
	if _, ok := w.entries[key]; !ok {
		return
	}
	delete(w.entries, key)
	w.recency.RemoveByKey(key)
}

func (w *keyedWindow[V]) touch(key string) {
	w.clock++
	w.recency.AddItem(key, w.clock)
}

func (w *keyedWindow[V]) clear() {
	w.entries = make(map[string]V)
	w.recency.Clear()
}

func (w *keyedWindow[V]) len() int {
	return len(w.entries)
}
