package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// createSampler creates a sampler for the configured ratio.
//
// A ratio of 1 or more samples every trace and 0 or less samples none;
// anything in between samples by trace ID hash so every service makes the
// same decision for a trace.
//
// The sampler is wrapped in ParentBased, so a request carrying a traceparent
// header follows the caller's decision:
//   - If parent span is sampled → child is sampled
//   - If parent span is not sampled → child is not sampled
//   - If no parent span → use the ratio
func createSampler(ratio float64) sdktrace.Sampler {
	var base sdktrace.Sampler
	switch {
	case ratio >= 1:
		base = sdktrace.AlwaysSample()
	case ratio <= 0:
		base = sdktrace.NeverSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(base)
}
