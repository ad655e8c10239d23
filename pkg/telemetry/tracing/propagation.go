package tracing

import (
	"context"

	"mercator-hq/lantern/pkg/wire"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// W3C Trace Context Propagation
//
// A client that is itself traced sends a traceparent header:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// The request span then joins the client's trace. Responses carry no trace
// headers.

// Propagator returns the configured text map propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// HeaderCarrier adapts a request header to propagation.TextMapCarrier.
type HeaderCarrier struct {
	header *wire.Header
}

var _ propagation.TextMapCarrier = HeaderCarrier{}

// NewHeaderCarrier wraps h.
func NewHeaderCarrier(h *wire.Header) HeaderCarrier {
	return HeaderCarrier{header: h}
}

// Get returns the value for key.
func (c HeaderCarrier) Get(key string) string {
	return c.header.Get(key)
}

// Set stores value under key.
func (c HeaderCarrier) Set(key, value string) {
	c.header.Set(key, value)
}

// Keys lists the header names.
func (c HeaderCarrier) Keys() []string {
	return c.header.Keys()
}

// Extract returns ctx carrying the remote span context found in h, if any.
func Extract(ctx context.Context, h *wire.Header) context.Context {
	return Propagator().Extract(ctx, NewHeaderCarrier(h))
}
