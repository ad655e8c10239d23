package metrics

import (
	"strconv"
	"sync"
	"time"

	"mercator-hq/lantern/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// otherMethod replaces request methods beyond the cardinality limit.
const otherMethod = "OTHER"

// Collector owns the Prometheus registry and every server metric. A nil
// *Collector is valid and records nothing, so callers need no enabled checks.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	connMetrics    *ConnectionMetrics
	requestMetrics *RequestMetrics

	// Clients choose the method token, so its label values are capped.
	methodLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics with registry.
// If registry is nil, a new registry is created. Go runtime and process
// collectors are registered as well.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Namespace: "lantern",
//		Subsystem: "server",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:        cfg,
		registry:      registry,
		methodLimiter: NewCardinalityLimiter(16),
	}

	c.connMetrics = NewConnectionMetrics(cfg, registry)
	c.requestMetrics = NewRequestMetrics(cfg, registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ConnectionAccepted records a connection returned by Accept.
func (c *Collector) ConnectionAccepted() {
	if c == nil {
		return
	}
	c.connMetrics.accepted.Inc()
}

// ConnectionShed records a connection closed without a response.
//
// Parameters:
//   - reason: "admission_timeout", "read_error" or "too_large"
func (c *Collector) ConnectionShed(reason string) {
	if c == nil {
		return
	}
	c.connMetrics.shed.WithLabelValues(reason).Inc()
}

// ConnectionStarted marks a connection as holding an admission slot.
func (c *Collector) ConnectionStarted() {
	if c == nil {
		return
	}
	c.connMetrics.inFlight.Inc()
}

// ConnectionFinished releases the in flight mark of ConnectionStarted.
func (c *Collector) ConnectionFinished() {
	if c == nil {
		return
	}
	c.connMetrics.inFlight.Dec()
}

// SetAdmissionWaiting records how many connections wait for a slot.
func (c *Collector) SetAdmissionWaiting(n int64) {
	if c == nil {
		return
	}
	c.connMetrics.waiting.Set(float64(n))
}

// SetAdmissionCapacity records the admission capacity.
func (c *Collector) SetAdmissionCapacity(n int64) {
	if c == nil {
		return
	}
	c.connMetrics.capacity.Set(float64(n))
}

// RecordRequest records a dispatched request.
//
// Parameters:
//   - method: request method as sent by the client
//   - status: response status code, 0 when nothing was sent
//   - duration: time from parsed request to response written
//   - bytes: bytes written to the socket
func (c *Collector) RecordRequest(method string, status int, duration time.Duration, bytes int64) {
	if c == nil {
		return
	}
	if !c.methodLimiter.Allow(method) {
		method = otherMethod
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	c.requestMetrics.RecordRequest(method, code, duration, bytes)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
