// Package telemetry bundles the observability components of the lantern
// server.
//
// # Components
//
//   - logging: Structured logging with connection context and PII redaction
//   - metrics: Prometheus collectors for connections, admission and requests
//   - tracing: OpenTelemetry spans per request, exported over OTLP
//   - health: Liveness, readiness and version routes
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{Version: version})
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	slog.SetDefault(tel.Logger().Slog())
//	tel.RegisterRoutes(&endpoint.Definitions)
//
// Metrics and health routes are only registered when enabled in the
// configuration. A disabled component is replaced by a no-op: Metrics
// returns a nil *metrics.Collector, which records nothing.
package telemetry
