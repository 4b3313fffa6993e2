// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics holds the collectors for country operations, the read-through
// cache and the HTTP layer.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheRequests     *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
// Passing prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countries_operations_total",
			Help: "Country service operations by outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "countries_operation_duration_seconds",
			Help:    "Duration of country service operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countries_cache_requests_total",
			Help: "Country cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "countries_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: durationBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveOperation records one service operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementCache records a cache lookup result.
func (m *Metrics) IncrementCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// ObserveHTTP records the duration of one HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
