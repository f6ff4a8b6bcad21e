// Package metrics holds the Prometheus instrumentation for reelai.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheError    = "error"
	WriteOK       = "ok"
	WriteFailed   = "failed"
	WriteSkipped  = "skipped_empty"
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

var (
	// Cache-aside metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_cache_lookups_total",
			Help: "Cache lookups by key namespace and result",
		},
		[]string{"namespace", "result"}, // hit, miss, error
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_cache_writes_total",
			Help: "Cache writes by key namespace and result",
		},
		[]string{"namespace", "result"},
	)

	ProducerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_producer_runs_total",
			Help: "Shared computations started on cache miss",
		},
		[]string{"namespace", "outcome"},
	)

	CoalescedWaiters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_coalesced_waiters_total",
			Help: "Callers that joined an in-flight computation instead of starting one",
		},
		[]string{"namespace"},
	)

	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_provider_requests_total",
			Help: "Provider fetches by provider and outcome",
		},
		[]string{"provider", "outcome"}, // ok, timeout, rate_limited, invalid_response, unavailable
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelai_provider_duration_seconds",
			Help:    "Provider fetch latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	ProviderExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelai_provider_chain_exhausted_total",
			Help: "Resolutions where every provider failed",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelai_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	// Metadata API metrics
	MetadataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_metadata_requests_total",
			Help: "Metadata API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelai_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelai_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordCacheLookup counts one store read.
func RecordCacheLookup(namespace, result string) {
	CacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordCacheWrite counts one store write attempt.
func RecordCacheWrite(namespace, result string) {
	CacheWrites.WithLabelValues(namespace, result).Inc()
}

// RecordProducerRun counts one shared computation.
func RecordProducerRun(namespace string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	ProducerRuns.WithLabelValues(namespace, outcome).Inc()
}

// RecordCoalesced counts a caller that shared another caller's computation.
func RecordCoalesced(namespace string) {
	CoalescedWaiters.WithLabelValues(namespace).Inc()
}

// RecordProviderFetch records the outcome and latency of one provider call.
func RecordProviderFetch(provider, outcome string, duration time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	ProviderLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordExhausted counts a resolution that fell through every provider.
func RecordExhausted() {
	ProviderExhausted.Inc()
}

// SetBreakerState publishes a circuit breaker transition.
func SetBreakerState(provider string, state int) {
	BreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordMetadataRequest counts one metadata API call.
func RecordMetadataRequest(endpoint string, status int) {
	MetadataRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// RecordAPIRequest records HTTP request metrics.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
