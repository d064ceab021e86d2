package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poster",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poster",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// GenerationsTotal outcome: succeeded | degraded
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poster",
			Subsystem: "generation",
			Name:      "total",
			Help:      "Poster generations by algorithm service outcome",
		},
		[]string{"outcome"},
	)

	// PersistenceFailuresTotal step: unavailable | insert_poster | record_response | touch_thread
	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poster",
			Subsystem: "generation",
			Name:      "persistence_failures_total",
			Help:      "Best-effort persistence steps that failed during generation",
		},
		[]string{"step"},
	)

	// ImageRelayTotal result: ok | not_found | upstream_error
	ImageRelayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poster",
			Subsystem: "image",
			Name:      "relay_total",
			Help:      "Image relay requests by result",
		},
		[]string{"result"},
	)

	CacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poster",
			Subsystem: "cache",
			Name:      "thread_summary_total",
			Help:      "Thread summary cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

func RecordGeneration(outcome string) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
}

func RecordPersistenceFailure(step string) {
	PersistenceFailuresTotal.WithLabelValues(step).Inc()
}

func RecordImageRelay(result string) {
	ImageRelayTotal.WithLabelValues(result).Inc()
}

func RecordCache(result string) {
	CacheTotal.WithLabelValues(result).Inc()
}
