package health

import (
	"encoding/json"
	"fmt"
	"runtime"

	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/wire"
)

// StatusServiceUnavailable is sent by the readiness route when a check fails.
const StatusServiceUnavailable = 503

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.0.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns a route handler for the liveness probe.
//
// Example response:
//
//	{"status":"ok","timestamp":"2025-11-20T10:30:00Z"}
func (c *Checker) LivenessHandler() router.Handler {
	return func(ctx *wire.Context) error {
		return sendJSON(ctx, wire.StatusOK, c.CheckLiveness(ctx.Ctx()))
	}
}

// ReadinessHandler returns a route handler for the readiness probe. It
// answers 200 when every check passes and 503 otherwise.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "server": {"status": "unhealthy", "message": "server is not running"}
//	    },
//	    "timestamp": "2025-11-20T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() router.Handler {
	return func(ctx *wire.Context) error {
		status := c.CheckReadiness(ctx.Ctx())
		code := wire.StatusOK
		if !status.Ready() {
			code = StatusServiceUnavailable
		}
		return sendJSON(ctx, code, status)
	}
}

// VersionHandler returns a route handler reporting build information.
func VersionHandler(version, commit, buildTime string) router.Handler {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(ctx *wire.Context) error {
		return sendJSON(ctx, wire.StatusOK, info)
	}
}

// Register adds GET routes for the liveness, readiness and version probes
// at the paths in cfg.
//
// Usage:
//
//	checker := health.New(5 * time.Second)
//	checker.Register(endpoint, cfg.Telemetry.Health, version, commit, buildTime)
func (c *Checker) Register(defs *router.Definitions, cfg config.HealthConfig, version, commit, buildTime string) {
	defs.GET(cfg.LivenessPath, c.LivenessHandler())
	defs.GET(cfg.ReadinessPath, c.ReadinessHandler())
	defs.GET(cfg.VersionPath, VersionHandler(version, commit, buildTime))
}

func sendJSON(ctx *wire.Context, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode health response: %w", err)
	}
	ctx.Status(status).JSON().SendBytes(body)
	return nil
}
