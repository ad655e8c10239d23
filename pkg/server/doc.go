// Package server runs the lantern accept loop.
//
// A Server binds a TCP listener, initializes its router.Endpoint once and
// then accepts connections. Each connection must take a slot from the
// admission gate before it is handled; a connection that cannot get one
// within the admission timeout is closed without a response. Admitted
// connections are handled on their own goroutine: one request is read,
// dispatched and answered, then the connection is closed and the slot is
// released.
//
// # Lifecycle
//
//	Stopped → Starting → Running → Stopped
//
// Start binds and returns; it is a no-op unless the server is stopped.
// The endpoint's init hook runs on the accept goroutine before the first
// Accept, and an init error stops the server. Stop closes the listener and
// lets in-flight connections finish. Serve combines Start, waiting on a
// context, Stop and Wait.
//
// # Basic Usage
//
//	endpoint := router.NewEndpoint("", func(e *router.Endpoint) error {
//	    e.GET("/hello", func(ctx *wire.Context) error {
//	        ctx.Send("hello")
//	        return nil
//	    })
//	    return nil
//	})
//
//	srv, err := server.New(cfg.Server, endpoint)
//	if err != nil {
//	    return err
//	}
//	srv.SetMetrics(tel.Metrics())
//	srv.SetTracer(tel.Tracer())
//
//	if err := srv.Serve(ctx); err != nil {
//	    return err
//	}
//
// Use port 0 in the listen address for an ephemeral port and read it back
// with Port once Start returned.
//
// # Observability
//
// Each connection gets a UUID connection id that is attached to the request
// context together with the client address, method and path, so log records
// written through the context carry them. When a tracer is set, every
// request gets a server span. When a stats schedule is configured, a cron
// job logs the connection counters.
package server
