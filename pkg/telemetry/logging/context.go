package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// ConnIDKey is the context key for connection IDs.
	ConnIDKey contextKey = "conn_id"

	// ClientIPKey is the context key for the remote address of a connection.
	ClientIPKey contextKey = "client_ip"

	// MethodKey is the context key for the request method.
	MethodKey contextKey = "method"

	// PathKey is the context key for the request path.
	PathKey contextKey = "path"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithConnID adds a connection ID to the context.
func WithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, ConnIDKey, connID)
}

// GetConnID retrieves the connection ID from the context.
func GetConnID(ctx context.Context) string {
	return stringValue(ctx, ConnIDKey)
}

// WithClientIP adds the remote address to the context.
func WithClientIP(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ClientIPKey, addr)
}

// GetClientIP retrieves the remote address from the context.
func GetClientIP(ctx context.Context) string {
	return stringValue(ctx, ClientIPKey)
}

// WithRequest adds the request method and path to the context.
func WithRequest(ctx context.Context, method, path string) context.Context {
	ctx = context.WithValue(ctx, MethodKey, method)
	return context.WithValue(ctx, PathKey, path)
}

// GetMethod retrieves the request method from the context.
func GetMethod(ctx context.Context) string {
	return stringValue(ctx, MethodKey)
}

// GetPath retrieves the request path from the context.
func GetPath(ctx context.Context) string {
	return stringValue(ctx, PathKey)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context. When none was set
// explicitly, the ID of a sampled OpenTelemetry span in ctx is used.
func GetTraceID(ctx context.Context) string {
	if id := stringValue(ctx, TraceIDKey); id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && sc.IsSampled() {
		return sc.TraceID().String()
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context, falling back to the
// OpenTelemetry span in ctx like GetTraceID.
func GetSpanID(ctx context.Context) string {
	if id := stringValue(ctx, SpanIDKey); id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && sc.IsSampled() {
		return sc.SpanID().String()
	}
	return ""
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if connID := GetConnID(ctx); connID != "" {
		fields = append(fields, string(ConnIDKey), connID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		fields = append(fields, string(ClientIPKey), ip)
	}
	if method := GetMethod(ctx); method != "" {
		fields = append(fields, string(MethodKey), method)
	}
	if path := GetPath(ctx); path != "" {
		fields = append(fields, string(PathKey), path)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, string(TraceIDKey), traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, string(SpanIDKey), spanID)
	}

	return fields
}
