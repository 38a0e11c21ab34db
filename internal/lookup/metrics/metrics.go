// Package metrics provides Prometheus metrics for the lookup pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all lookup pipeline metrics.
type Metrics struct {
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	ProviderAttemptsTotal *prometheus.CounterVec // by provider ref and outcome
	MaskedRecordsTotal    *prometheus.CounterVec // by provider ref

	LookupDurationSeconds  *prometheus.HistogramVec // by terminal outcome
	AttemptDurationSeconds *prometheus.HistogramVec // by provider ref
}

// New creates a Metrics instance with all metrics registered on the default
// registry.
func New() *Metrics {
	return &Metrics{
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcgateway_lookup_cache_hits_total",
			Help: "Total number of lookups served from the result cache",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcgateway_lookup_cache_misses_total",
			Help: "Total number of lookups that fell through to providers",
		}),
		ProviderAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcgateway_provider_attempts_total",
			Help: "Total provider attempts by provider reference and outcome",
		}, []string{"provider", "outcome"}),
		MaskedRecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcgateway_provider_masked_records_total",
			Help: "Records rejected by the owner-name masking check, by provider",
		}, []string{"provider"}),
		LookupDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rcgateway_lookup_duration_seconds",
			Help:    "End-to-end lookup duration by terminal outcome",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 15, 30, 60},
		}, []string{"outcome"}),
		AttemptDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rcgateway_provider_attempt_duration_seconds",
			Help:    "Single provider attempt duration by provider reference",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
	}
}

// RecordCacheHit records a lookup served from cache.
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a lookup that proceeded to provider attempts.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordAttempt records a finished provider attempt.
func (m *Metrics) RecordAttempt(providerRef, outcome string, elapsed time.Duration) {
	m.ProviderAttemptsTotal.WithLabelValues(providerRef, outcome).Inc()
	m.AttemptDurationSeconds.WithLabelValues(providerRef).Observe(elapsed.Seconds())
}

// RecordMasked records a masked-owner-name rejection.
func (m *Metrics) RecordMasked(providerRef string) {
	m.MaskedRecordsTotal.WithLabelValues(providerRef).Inc()
}

// ObserveLookup records a completed lookup with its terminal outcome.
func (m *Metrics) ObserveLookup(outcome string, elapsed time.Duration) {
	m.LookupDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
