// Package metrics provides custom Prometheus metrics for the cover-art
// resolution pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CoverArtMetrics contains all Prometheus metrics related to cover resolution
// and auditing.
type CoverArtMetrics struct {
	ResolverCalls      *prometheus.CounterVec
	ResolverErrors     *prometheus.CounterVec
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	ValidationFailures prometheus.Counter
	AuditChecked       *prometheus.CounterVec
	AuditUpdated       *prometheus.CounterVec
	registry           *prometheus.Registry
}

// NewCoverArtMetrics creates a new instance of CoverArtMetrics registered on
// the given registry.
func NewCoverArtMetrics(registry *prometheus.Registry) (*CoverArtMetrics, error) {
	m := &CoverArtMetrics{registry: registry}
	m.initMetrics()
	if err := m.register(); err != nil {
		return nil, fmt.Errorf("failed to register coverart metrics: %w", err)
	}
	return m, nil
}

func (m *CoverArtMetrics) initMetrics() {
	m.ResolverCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_resolver_calls_total",
		Help: "Total number of resolver lookups, by source.",
	}, []string{"source"})

	m.ResolverErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_resolver_errors_total",
		Help: "Total number of failed resolver lookups, by source.",
	}, []string{"source"})

	m.CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_cache_hits_total",
		Help: "Total number of source cache hits, by source.",
	}, []string{"source"})

	m.CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_cache_misses_total",
		Help: "Total number of source cache misses, by source.",
	}, []string{"source"})

	m.ValidationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverart_validation_duration_seconds",
		Help:    "Duration of candidate image validation in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	m.ValidationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverart_validation_failures_total",
		Help: "Total number of candidate URLs that failed validation.",
	})

	m.AuditChecked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_audit_checked_total",
		Help: "Total number of items checked by audit runs, by kind.",
	}, []string{"kind"})

	m.AuditUpdated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverart_audit_updated_total",
		Help: "Total number of items updated by audit runs, by kind.",
	}, []string{"kind"})
}

func (m *CoverArtMetrics) register() error {
	collectors := []prometheus.Collector{
		m.ResolverCalls,
		m.ResolverErrors,
		m.CacheHits,
		m.CacheMisses,
		m.ValidationDuration,
		m.ValidationFailures,
		m.AuditChecked,
		m.AuditUpdated,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncrementResolverCalls increases the resolver call counter for a source.
func (m *CoverArtMetrics) IncrementResolverCalls(source string) {
	m.ResolverCalls.WithLabelValues(source).Inc()
}

// IncrementResolverErrors increases the resolver error counter for a source.
func (m *CoverArtMetrics) IncrementResolverErrors(source string) {
	m.ResolverErrors.WithLabelValues(source).Inc()
}

// IncrementCacheHits increases the cache hit counter for a source.
func (m *CoverArtMetrics) IncrementCacheHits(source string) {
	m.CacheHits.WithLabelValues(source).Inc()
}

// IncrementCacheMisses increases the cache miss counter for a source.
func (m *CoverArtMetrics) IncrementCacheMisses(source string) {
	m.CacheMisses.WithLabelValues(source).Inc()
}

// ObserveValidationDuration records how long a validation probe took.
func (m *CoverArtMetrics) ObserveValidationDuration(seconds float64) {
	m.ValidationDuration.Observe(seconds)
}

// IncrementValidationFailures increases the failed validation counter.
func (m *CoverArtMetrics) IncrementValidationFailures() {
	m.ValidationFailures.Inc()
}

// IncrementAuditChecked increases the audit checked counter for a kind.
func (m *CoverArtMetrics) IncrementAuditChecked(kind string) {
	m.AuditChecked.WithLabelValues(kind).Inc()
}

// IncrementAuditUpdated increases the audit updated counter for a kind.
func (m *CoverArtMetrics) IncrementAuditUpdated(kind string) {
	m.AuditUpdated.WithLabelValues(kind).Inc()
}
