// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidtube"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Requests currently being served",
		},
	)

	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Like and subscription toggles by target kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	MediaOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_operations_total",
			Help:      "Object store operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ReaperQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "media_reaper_queue_depth",
			Help:      "Asset deletions waiting for a reaper worker",
		},
	)
)

// RecordHTTPRequest records a completed request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordToggle records the state a toggle left behind.
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	TogglesTotal.WithLabelValues(kind, state).Inc()
}

// RecordMediaOperation records an object store call.
func RecordMediaOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	MediaOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
