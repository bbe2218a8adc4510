package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the post cache.
type CacheMetrics struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Evictions prometheus.Counter
}

// NewCacheMetrics creates and registers post cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "post_cache",
			Name:      "hits_total",
			Help:      "Total number of post cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "post_cache",
			Name:      "misses_total",
			Help:      "Total number of post cache misses, by layer.",
		}, []string{"layer"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "post_cache",
			Name:      "refreshes_total",
			Help:      "Total number of forced post cache refreshes, by result.",
		}, []string{"result"}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "post_cache",
			Name:      "evictions_total",
			Help:      "Total number of expired entries evicted from the in-memory layer.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Refreshes, m.Evictions)
	return m
}
