package tracing

import (
	"errors"

	"mercator-hq/lantern/pkg/httperr"
	"mercator-hq/lantern/pkg/wire"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys follow the OpenTelemetry HTTP semantic conventions.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLPath        = "url.path"
	AttrURLQuery       = "url.query"
	AttrClientAddress  = "client.address"
	AttrResponseBytes  = "http.response.body.size"
	AttrErrorKind      = "lantern.error.kind"
)

// SpanName returns the span name for a request.
func SpanName(req *wire.Request) string {
	if req.Method() == "" {
		return "HTTP"
	}
	return req.Method()
}

// RequestAttributes returns the span attributes describing req.
func RequestAttributes(req *wire.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, req.Method()),
		attribute.String(AttrURLPath, req.Path()),
	}
	if q := req.RawQuery(); q != "" {
		attrs = append(attrs, attribute.String(AttrURLQuery, q))
	}
	if ip := req.ClientIP(); ip != "" {
		attrs = append(attrs, attribute.String(AttrClientAddress, ip))
	}
	return attrs
}

// EndRequest records the outcome of a request on span and ends it.
// status is 0 when no response was written. Server errors and handler
// failures mark the span as failed.
func EndRequest(span trace.Span, status int, bytes int64, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
	}
	if bytes > 0 {
		span.SetAttributes(attribute.Int64(AttrResponseBytes, bytes))
	}
	SetStatus(span, status, err)
	span.End()
}

// SetStatus sets the span status. A handler error is recorded with its
// error kind; a 5xx status without an error still marks the span failed.
func SetStatus(span trace.Span, status int, err error) {
	if err != nil {
		var herr *httperr.Error
		if errors.As(err, &herr) {
			span.SetAttributes(attribute.String(AttrErrorKind, herr.Kind.String()))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if status >= 500 {
		span.SetStatus(codes.Error, "")
	}
}
