// Package tracing provides OpenTelemetry tracing for requests handled by the
// Lantern server.
//
// Each dispatched request gets a server span named after its method, with
// the path, query and client address as attributes. When tracing is
// disabled the tracer is a noop and StartRequest returns the context
// unchanged.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.StartRequest(ctx, req)
//	// dispatch
//	tracing.EndRequest(span, status, written, err)
//
// Spans are exported with OTLP over gRPC to telemetry.tracing.endpoint.
package tracing
