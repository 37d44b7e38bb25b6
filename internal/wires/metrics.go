package wires

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts resolver work. A nil *Metrics records nothing.
type Metrics struct {
	lookups   prometheus.Counter
	cacheHits prometheus.Counter
	resolved  prometheus.Counter
	failures  *prometheus.CounterVec
	steps     prometheus.Histogram
}

func NewMetrics(r prometheus.Registerer) *Metrics {
	return &Metrics{
		lookups: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "wires_lookups_total",
			Help: "Total number of wire value lookups.",
		}),
		cacheHits: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "wires_cache_hits_total",
			Help: "Lookups answered from already resolved wires.",
		}),
		resolved: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "wires_resolved_total",
			Help: "Total number of wires whose value was computed.",
		}),
		failures: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "wires_resolve_failures_total",
			Help: "Lookups that failed, by reason.",
		}, []string{"reason"}),
		steps: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "wires_resolve_steps",
			Help:    "Work stack iterations needed by a single lookup.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (m *Metrics) lookup(hit bool) {
	if m == nil {
		return
	}
	m.lookups.Inc()
	if hit {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) resolvedOne() {
	if m == nil {
		return
	}
	m.resolved.Inc()
}

func (m *Metrics) failed(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(failureReason(err)).Inc()
}

func (m *Metrics) observeSteps(n int) {
	if m == nil {
		return
	}
	m.steps.Observe(float64(n))
}
