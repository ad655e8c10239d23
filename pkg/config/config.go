package config

import "time"

// Config is the root configuration structure for Lantern.
// It contains the server, static content and telemetry sections.
type Config struct {
	// Server contains the listener, admission and request limits.
	Server ServerConfig `yaml:"server"`

	// Static lists the static content mounts served after the route tree.
	Static StaticConfig `yaml:"static"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health routes.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Port 0 lets the OS pick a free port.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// MaxConcurrent is the number of connections handled at the same time.
	// Further connections wait for a free slot.
	// Default: 16
	MaxConcurrent int `yaml:"max_concurrent"`

	// AdmissionTimeout is how long an accepted connection waits for a free
	// slot before it is closed unanswered.
	// Default: 30s
	AdmissionTimeout time.Duration `yaml:"admission_timeout"`

	// ReadTimeout bounds reading the request from the socket.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response, counted from its first byte.
	// Time spent in handlers before they send is not included.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxRequestBytes is the largest request (head and body) accepted.
	// Default: 1048576 (1MB)
	MaxRequestBytes int `yaml:"max_request_bytes"`

	// StatsSchedule is a cron expression for periodic connection statistics
	// in the log. Empty disables the report.
	// Example: "*/5 * * * *"
	StatsSchedule string `yaml:"stats_schedule"`

	// IndexFile is served by static mounts for requests to "/".
	// Default: "/index.html"
	IndexFile string `yaml:"index_file"`
}

// StaticConfig contains the static content mounts.
type StaticConfig struct {
	// Mounts are tried in order after the route tree is exhausted.
	Mounts []MountConfig `yaml:"mounts"`
}

// MountConfig describes one static content mount.
type MountConfig struct {
	// Pattern is the path pattern (regular expression) the mount serves.
	// Default: "/.*"
	Pattern string `yaml:"pattern"`

	// Root is the logical root prefixed to the request path before lookup.
	// Default: "/"
	Root string `yaml:"root"`

	// Backend selects the content source.
	// Options: "dir", "sqlite"
	// Default: "dir"
	Backend string `yaml:"backend"`

	// Path is the directory (dir backend) or database file (sqlite backend).
	// Required.
	Path string `yaml:"path"`

	// Watch rebuilds the file index when the directory changes.
	// Only used by the dir backend.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health route configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks client addresses and credentials in logs.
	// Default: false
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	// Each pattern has a name, regex, and replacement string.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the route serving the Prometheus text format.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "lantern"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "server"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "lantern"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for trace exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health route configuration.
type HealthConfig struct {
	// Enabled registers the liveness, readiness and version routes.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path reporting build information.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`
}
