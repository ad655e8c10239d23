package metrics

import (
	"mercator-hq/lantern/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionMetrics tracks accepted connections and admission.
//
// Metrics:
//   - lantern_server_connections_accepted_total: Connections returned by Accept
//   - lantern_server_connections_shed_total: Connections closed unanswered, by reason
//   - lantern_server_connections_in_flight: Connections holding an admission slot
//   - lantern_server_admission_waiting: Connections waiting for a slot
//   - lantern_server_admission_capacity: Configured number of slots
type ConnectionMetrics struct {
	accepted prometheus.Counter
	shed     *prometheus.CounterVec
	inFlight prometheus.Gauge
	waiting  prometheus.Gauge
	capacity prometheus.Gauge
}

// NewConnectionMetrics creates and registers connection metrics with the provided registry.
func NewConnectionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConnectionMetrics {
	cm := &ConnectionMetrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted connections",
		}),
		shed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connections_shed_total",
				Help:      "Total number of connections closed without a response",
			},
			[]string{"reason"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_in_flight",
			Help:      "Number of connections currently being handled",
		}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "admission_waiting",
			Help:      "Number of connections waiting for an admission slot",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "admission_capacity",
			Help:      "Number of connections handled at the same time",
		}),
	}

	registry.MustRegister(cm.accepted, cm.shed, cm.inFlight, cm.waiting, cm.capacity)
	return cm
}
