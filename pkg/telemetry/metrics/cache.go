package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"taskforge-hq/taskforge/pkg/cache"
)

// CacheMetrics tracks prompt cache effectiveness.
//
// Metrics:
//   - taskforge_cache_accesses_total: Lookups by result (hit, miss)
//   - taskforge_cache_entries: Current number of cached entries
//   - taskforge_cache_evictions_total: Evicted entries
//   - taskforge_cache_tokens_saved_total: Estimated tokens saved by hits
type CacheMetrics struct {
	accessesTotal    *prometheus.CounterVec
	entries          prometheus.Gauge
	evictionsTotal   prometheus.Counter
	tokensSavedTotal prometheus.Counter

	// last published counter values, so refresh can emit deltas.
	mu                                           sync.Mutex
	lastHits, lastMisses, lastEvicted, lastSaved uint64
}

func newCacheMetrics(registry *prometheus.Registry) *CacheMetrics {
	m := &CacheMetrics{
		accessesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_accesses_total",
				Help:      "Prompt cache lookups by result",
			},
			[]string{"result"},
		),
		entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "cache_entries",
				Help:      "Current number of cached entries",
			},
		),
		evictionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_evictions_total",
				Help:      "Entries evicted by capacity or TTL",
			},
		),
		tokensSavedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_tokens_saved_total",
				Help:      "Estimated tokens saved by cache hits",
			},
		),
	}

	registry.MustRegister(m.accessesTotal, m.entries, m.evictionsTotal, m.tokensSavedTotal)
	return m
}

// Refresh publishes the cache's counters. It is cumulative-safe: repeated
// calls only add the delta since the previous call.
func (m *CacheMetrics) Refresh(c *cache.PromptCache) {
	stats := c.Stats()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.accessesTotal.WithLabelValues("hit").Add(float64(stats.Hits - m.lastHits))
	m.accessesTotal.WithLabelValues("miss").Add(float64(stats.Misses - m.lastMisses))
	m.evictionsTotal.Add(float64(stats.EntriesEvicted - m.lastEvicted))
	m.tokensSavedTotal.Add(float64(stats.TokensSaved - m.lastSaved))
	m.entries.Set(float64(c.Len()))

	m.lastHits = stats.Hits
	m.lastMisses = stats.Misses
	m.lastEvicted = stats.EntriesEvicted
	m.lastSaved = stats.TokensSaved
}
