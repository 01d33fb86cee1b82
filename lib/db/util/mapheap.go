// Package util
//
// This file provides a keyed priority queue.
//
// This implementation combines a binary heap with a hash map to provide both
// efficient priority-based operations and key-based access. The map cache of the
// store package uses it as its recency queue: the key is the encoded entry key and
// the priority is a logical access clock, so the minimum is always the least
// recently used entry.
//
// Key advantages of this implementation:
//
// 1. Time Complexity:
//   - O(log n) for priority operations (Push, Pop, Update)
//   - O(1) for key-based lookups and existence checks
//   - O(log n) for key-based removal
//
// 2. Eviction Benefits:
//   - Efficiently identifies the oldest/lowest-priority items for eviction
//   - Supports direct removal when items are deleted
//   - Can update priorities when items are accessed (for LRU behaviors)
//
// 3. Concurrency Considerations:
//   - Note: This implementation is not thread-safe
//   - For concurrent use, external synchronization should be applied
//
// Example usage:
//
//	q := NewMapHeap[string]()
//	heap.Init(q)
//
//	// Record accesses with a logical clock
//	q.AddItem("a", 1)
//	q.AddItem("b", 2)
//	q.AddItem("a", 3) // "a" touched again
//
//	// Evict the least recently used key ("b")
//	key, _, _ := q.PopMin()
package util

import (
	"container/heap"
	"fmt"
)

// item represents an item in the queue
// with a comparable key for identification and uint64 value for priority
type item[K comparable] struct {
	Key      K      // Unique identifier for the item
	Priority uint64 // Priority used for priority in the heap
	index    int    // Index in the heap, maintained by heap package
}

func (i *item[K]) String() string {
	return fmt.Sprintf("{Key: %v, Priority: %d}", i.Key, i.Priority)
}

// MapHeap implements a min priority queue with key-based access
type MapHeap[K comparable] struct {
	items    []*item[K]     // The actual heap slice
	itemsMap map[K]*item[K] // Map for O(1) access by key
}

// NewMapHeap creates a new queue
func NewMapHeap[K comparable]() *MapHeap[K] {
	return &MapHeap[K]{
		items:    make([]*item[K], 0),
		itemsMap: make(map[K]*item[K]),
	}
}

// Len returns the number of items in the queue (part of heap.Interface)
func (mh *MapHeap[K]) Len() int { return len(mh.items) }

// Less compares items by value (part of heap.Interface)
func (mh *MapHeap[K]) Less(i, j int) bool {
	return mh.items[i].Priority < mh.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (mh *MapHeap[K]) Swap(i, j int) {
	mh.items[i], mh.items[j] = mh.items[j], mh.items[i]
	mh.items[i].index = i
	mh.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface)
func (mh *MapHeap[K]) Push(x interface{}) {
	n := len(mh.items)
	it := x.(*item[K])
	it.index = n
	mh.items = append(mh.items, it)
	mh.itemsMap[it.Key] = it
}

// Pop removes and returns the minimum item (part of heap.Interface)
func (mh *MapHeap[K]) Pop() interface{} {
	old := mh.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // Avoid memory leak
	it.index = -1  // For safety
	mh.items = old[:n-1]
	delete(mh.itemsMap, it.Key)
	return it
}

// AddItem adds a new item to the queue or updates existing one
func (mh *MapHeap[K]) AddItem(key K, priority uint64) {
	// Check if item already exists
	if it, exists := mh.itemsMap[key]; exists {
		// Update priority and fix heap
		it.Priority = priority
		heap.Fix(mh, it.index)
		return
	}

	heap.Push(mh, &item[K]{
		Key:      key,
		Priority: priority,
	})
}

// RemoveByKey removes an item by its key
func (mh *MapHeap[K]) RemoveByKey(key K) (uint64, bool) {
	it, exists := mh.itemsMap[key]
	if !exists {
		return 0, false
	}

	// Remove from heap
	heap.Remove(mh, it.index)
	return it.Priority, true
}

// PopMin removes the minimum item and returns its key and priority
func (mh *MapHeap[K]) PopMin() (K, uint64, bool) {
	if len(mh.items) == 0 {
		var zero K
		return zero, 0, false
	}
	it := heap.Pop(mh).(*item[K])
	return it.Key, it.Priority, true
}

// Peek returns the minimum value item without removing it
func (mh *MapHeap[K]) Peek() (*item[K], bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return mh.items[0], true
}

// Contains checks if a key exists in the queue
func (mh *MapHeap[K]) Contains(key K) bool {
	_, exists := mh.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it
func (mh *MapHeap[K]) GetByKey(key K) (*item[K], bool) {
	it, exists := mh.itemsMap[key]
	return it, exists
}

// Clear removes all items
func (mh *MapHeap[K]) Clear() {
	mh.items = mh.items[:0]
	mh.itemsMap = make(map[K]*item[K])
}
