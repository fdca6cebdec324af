package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the policy module.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors prometheus.Counter
	Mutations   *prometheus.CounterVec
}

// New creates a new Metrics instance with all policy module metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_policy_cache_hits_total",
			Help: "Policy reads served from the redis cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_policy_cache_misses_total",
			Help: "Policy reads that fell through to the store",
		}),
		CacheErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_policy_cache_errors_total",
			Help: "Redis failures during policy cache reads or invalidations",
		}),
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_policy_mutations_total",
			Help: "Policy mutations by operation",
		}, []string{"operation"}), // operation: "set", "add_unit", "add_methodology"
	}
}

func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) RecordCacheError() {
	if m != nil {
		m.CacheErrors.Inc()
	}
}

func (m *Metrics) RecordMutation(operation string) {
	if m != nil {
		m.Mutations.WithLabelValues(operation).Inc()
	}
}
