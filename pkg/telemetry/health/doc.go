// Package health provides liveness, readiness and version routes.
//
// # Endpoints
//
//   - /health: Liveness probe - the process is running
//   - /ready: Readiness probe - every registered check passes
//   - /version: Build information - version, commit, build time
//
// The routes are ordinary router handlers, registered on an endpoint ahead
// of the application routes.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("server", func(ctx context.Context) error {
//	    if !srv.IsRunning() {
//	        return errors.New("server is not running")
//	    }
//	    return nil
//	})
//	checker.Register(&endpoint.Definitions, cfg.Telemetry.Health, version, commit, buildTime)
package health
