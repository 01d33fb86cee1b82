// Package util
//
// This file implements a size histogram for tracking the distribution of encoded
// element sizes. Buckets grow exponentially (16B, 64B, ... 4GB) so a handful of
// counters covers everything from tiny records to huge blobs.
//
// The collections of the store package feed every encoded element into one of these
// so Stats() can report on the data without performing expensive full scans.
package util

import (
	"math"
	"sync"
)

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// sizeBoundaries are the upper bounds (inclusive) of all but the last bucket.
var sizeBoundaries = []int64{
	16, 64, 256, 1024, 4096, // Bytes: 16B to 4KB
	16384, 65536, 262144, 1048576, // KB range: 16KB to 1MB
	4194304, 16777216, 67108864, // MB range: 4MB to 64MB
	268435456, 1073741824, 4294967296, // Above 256MB to 4GB
}

// SizeHistogram tracks the distribution of data sizes.
type SizeHistogram struct {
	mutex   sync.RWMutex
	buckets []int64 // one per boundary, plus one for everything larger
	count   int64   // Total number of samples
	sum     int64   // Sum of all sampled sizes
}

// SizeSummary is a point in time view of a SizeHistogram.
type SizeSummary struct {
	Count   int64 `json:"count"`
	Average int64 `json:"average"`
	Median  int64 `json:"median"`
	P99     int64 `json:"p99"`
}

// NewSizeHistogram creates a new, empty size histogram
func NewSizeHistogram() *SizeHistogram {
	return &SizeHistogram{
		buckets: make([]int64, len(sizeBoundaries)+1),
	}
}

// AddSample adds a size sample to the histogram
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) AddSample(size int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	bucket := len(sizeBoundaries)
	for i, boundary := range sizeBoundaries {
		if int64(size) <= boundary {
			bucket = i
			break
		}
	}

	h.buckets[bucket]++
	h.count++
	h.sum += int64(size)
}

// Count returns the total number of samples
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Percentile estimates the given percentile (0-100). The estimate is the
// midpoint of the bucket the percentile falls into.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) Percentile(percentile int) int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.percentile(percentile)
}

func (h *SizeHistogram) percentile(percentile int) int64 {
	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	cumulative := int64(0)
	for i, n := range h.buckets {
		cumulative += n
		if cumulative < target {
			continue
		}
		switch {
		case i == 0:
			return sizeBoundaries[0] / 2
		case i < len(sizeBoundaries):
			return (sizeBoundaries[i-1] + sizeBoundaries[i]) / 2
		default:
			return sizeBoundaries[len(sizeBoundaries)-1] * 2
		}
	}
	return h.sum / h.count
}

// Summary returns count, average, median and p99 estimates
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) Summary() SizeSummary {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return SizeSummary{}
	}
	return SizeSummary{
		Count:   h.count,
		Average: h.sum / h.count,
		Median:  h.percentile(50),
		P99:     h.percentile(99),
	}
}
