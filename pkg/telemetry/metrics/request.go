package metrics

import (
	"time"

	"mercator-hq/lantern/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks dispatched requests.
//
// Metrics:
//   - lantern_server_requests_total: Request count by method and status
//   - lantern_server_request_duration_seconds: Dispatch duration histogram by method
//   - lantern_server_response_size_bytes: Bytes written per response by method
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of requests dispatched",
			},
			[]string{"method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of request dispatch in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "response_size_bytes",
				Help:      "Size of responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B to 4MB
			},
			[]string{"method"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.responseSize,
	)

	return rm
}

// RecordRequest records metrics for a dispatched request.
func (rm *RequestMetrics) RecordRequest(method, status string, duration time.Duration, bytes int64) {
	rm.requestsTotal.WithLabelValues(method, status).Inc()
	rm.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
	if bytes > 0 {
		rm.responseSize.WithLabelValues(method).Observe(float64(bytes))
	}
}
