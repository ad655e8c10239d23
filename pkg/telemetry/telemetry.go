package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/telemetry/health"
	"mercator-hq/lantern/pkg/telemetry/logging"
	"mercator-hq/lantern/pkg/telemetry/metrics"
	"mercator-hq/lantern/pkg/telemetry/tracing"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Telemetry owns the logger, metrics collector, tracer and health checker.
type Telemetry struct {
	config  *config.TelemetryConfig
	build   BuildInfo
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
}

// New creates the telemetry components described by cfg. Metrics are
// registered on a fresh registry so that several instances can coexist in
// one process.
func New(cfg *config.TelemetryConfig, build BuildInfo) (*Telemetry, error) {
	logger, err := logging.New(logging.ConfigFrom(cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	t := &Telemetry{
		config: cfg,
		build:  build,
		logger: logger,
		health: health.New(5 * time.Second),
	}

	if cfg.Metrics.Enabled {
		t.metrics = metrics.NewCollector(&cfg.Metrics, prometheus.NewRegistry())
	}

	t.tracer, err = tracing.New(&cfg.Tracing, build.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return t, nil
}

// Logger returns the configured logger.
func (t *Telemetry) Logger() *logging.Logger { return t.logger }

// Metrics returns the metrics collector, nil when metrics are disabled.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer. It is a no-op when tracing is disabled.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker used by the readiness route.
func (t *Telemetry) Health() *health.Checker { return t.health }

// RegisterRoutes adds the metrics and health routes that are enabled in the
// configuration to defs.
func (t *Telemetry) RegisterRoutes(defs *router.Definitions) {
	if t.metrics != nil {
		defs.GET(t.config.Metrics.Path, t.metrics.Handler())
	}
	if t.config.Health.Enabled {
		t.health.Register(defs, t.config.Health, t.build.Version, t.build.Commit, t.build.BuildTime)
	}
}

// Shutdown flushes the tracer and the logger.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.tracer.Shutdown(ctx), t.logger.Shutdown())
}
