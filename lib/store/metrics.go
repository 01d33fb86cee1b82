package store

import (
	"io"

	"github.com/ValentinKolb/fundb/lib/db"
	"github.com/ValentinKolb/fundb/lib/db/util"
	vm "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
)

// --------------------------------------------------------------------------
// Process-wide metrics
// --------------------------------------------------------------------------

var (
	metricsSet = vm.NewSet()

	opensTotal       = metricsSet.NewCounter("fundb_opens_total")
	openRetriesTotal = metricsSet.NewCounter("fundb_open_retries_total")
	corruptionsTotal = metricsSet.NewCounter("fundb_corruptions_total")

	vecxHitsTotal   = metricsSet.NewCounter(`fundb_cache_hits_total{kind="vecx"}`)
	vecxMissesTotal = metricsSet.NewCounter(`fundb_cache_misses_total{kind="vecx"}`)
	mapxHitsTotal   = metricsSet.NewCounter(`fundb_cache_hits_total{kind="mapx"}`)
	mapxMissesTotal = metricsSet.NewCounter(`fundb_cache_misses_total{kind="mapx"}`)
)

// WriteMetrics writes all process-wide fundb metrics in Prometheus text format.
func WriteMetrics(w io.Writer) {
	metricsSet.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Per instance statistics
// --------------------------------------------------------------------------

// Stats is a snapshot of a collection's cache and size statistics.
// Hits and misses count reads since the instance was opened.
type Stats struct {
	Len      uint64           `json:"len"`
	Cached   int              `json:"cached"`
	Capacity *uint64          `json:"capacity,omitempty"`
	Hits     int64            `json:"hits"`
	Misses   int64            `json:"misses"`
	Sizes    util.SizeSummary `json:"sizes"`
	DB       db.DatabaseInfo  `json:"db"`
}

// instanceStats counts hits and misses of one collection and mirrors them
// into the process-wide counters of its kind.
type instanceStats struct {
	hits        gometrics.Counter
	misses      gometrics.Counter
	sizes       *util.SizeHistogram
	hitsTotal   *vm.Counter
	missesTotal *vm.Counter
}

func newInstanceStats(hitsTotal, missesTotal *vm.Counter) *instanceStats {
	return &instanceStats{
		hits:        gometrics.NewCounter(),
		misses:      gometrics.NewCounter(),
		sizes:       util.NewSizeHistogram(),
		hitsTotal:   hitsTotal,
		missesTotal: missesTotal,
	}
}

func (s *instanceStats) hit() {
	s.hits.Inc(1)
	s.hitsTotal.Inc()
}

func (s *instanceStats) miss() {
	s.misses.Inc(1)
	s.missesTotal.Inc()
}

func (s *instanceStats) snapshot(h *handle, cached int, capacity *uint64) Stats {
	st := Stats{
		Len:      h.length,
		Cached:   cached,
		Hits:     s.hits.Count(),
		Misses:   s.misses.Count(),
		Sizes:    s.sizes.Summary(),
	}
	if capacity != nil {
		c := *capacity
		st.Capacity = &c
	}
	if h.db != nil {
		st.DB = h.db.GetInfo()
	}
	return st
}
