// Package metrics provides Prometheus metrics for the Lantern server.
//
// # Metrics Categories
//
//   - Connection Metrics: accepted and shed connections, in flight count
//   - Admission Metrics: waiting connections and capacity
//   - Request Metrics: request count, dispatch duration and response size
//   - Go runtime and process metrics
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.ConnectionAccepted()
//	collector.RecordRequest("GET", 200, 3*time.Millisecond, 512)
//
//	// Expose the registry as a route
//	endpoint.GET(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector records nothing, which is how disabled metrics are
// represented.
//
// Request methods are client controlled; after 16 distinct methods further
// ones are recorded as OTHER.
package metrics
