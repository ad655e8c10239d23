package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/lantern/pkg/admission"
	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/telemetry/logging"
	"mercator-hq/lantern/pkg/telemetry/metrics"
	"mercator-hq/lantern/pkg/telemetry/tracing"
	"mercator-hq/lantern/pkg/wire"
)

// ErrAlreadyRunning is returned by Serve when the server was already started.
var ErrAlreadyRunning = errors.New("server is already running")

// Shed reasons reported to the metrics collector.
const (
	ShedAdmissionTimeout = "admission_timeout"
	ShedTooLarge         = "too_large"
	ShedReadError        = "read_error"
)

// State is the lifecycle state of a Server.
type State int32

const (
	// StateStopped means no listener is bound.
	StateStopped State = iota
	// StateStarting means the listener is bound and the endpoint is initializing.
	StateStarting
	// StateRunning means the accept loop is running.
	StateRunning
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Server accepts connections, admits them through a gate and dispatches each
// one to an endpoint. Every connection carries exactly one request.
type Server struct {
	config   config.ServerConfig
	endpoint *router.Endpoint
	gate     *admission.Gate
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer

	mu       sync.Mutex
	state    State
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	initErr  error
	stats    *StatsReporter
	handlers sync.WaitGroup

	accepted atomic.Int64
	shed     atomic.Int64
	served   atomic.Int64
}

// New creates a stopped server for endpoint. Zero values in cfg are replaced
// by the package config defaults.
func New(cfg config.ServerConfig, endpoint *router.Endpoint) (*Server, error) {
	if endpoint == nil {
		return nil, errors.New("server endpoint is required")
	}

	defaults := config.Config{Server: cfg}
	config.ApplyDefaults(&defaults)
	cfg = defaults.Server

	gate, err := admission.NewGate(cfg.MaxConcurrent, cfg.AdmissionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission gate: %w", err)
	}

	return &Server{
		config:   cfg,
		endpoint: endpoint,
		gate:     gate,
		logger:   slog.Default().With("component", "server"),
	}, nil
}

// SetLogger replaces the server logger. It is also handed to every request
// context.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMetrics sets the collector connection and request metrics are recorded
// on. A nil collector disables recording.
func (s *Server) SetMetrics(collector *metrics.Collector) {
	s.metrics = collector
	s.metrics.SetAdmissionCapacity(s.gate.Capacity())
}

// SetTracer sets the tracer that starts one span per request.
func (s *Server) SetTracer(tracer *tracing.Tracer) {
	s.tracer = tracer
}

// Gate returns the admission gate.
func (s *Server) Gate() *admission.Gate {
	return s.gate
}

// Start binds the listener and starts the accept loop in the background.
// It is a no-op when the server is not stopped. A bind failure is returned
// and leaves the server stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return nil
	}
	s.state = StateStarting

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.state = StateStopped
		return fmt.Errorf("failed to bind %s: %w", s.config.ListenAddress, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.listener = ln
	s.cancel = cancel
	s.done = make(chan struct{})
	s.initErr = nil

	if s.config.StatsSchedule != "" {
		s.stats = NewStatsReporter(s, s.config.StatsSchedule, s.logger)
		if err := s.stats.Start(ctx); err != nil {
			cancel()
			ln.Close()
			s.state = StateStopped
			return err
		}
	}

	s.logger.Info("server listening",
		"address", ln.Addr().String(),
		"max_concurrent", s.config.MaxConcurrent,
		"admission_timeout", s.config.AdmissionTimeout.String(),
	)

	go s.run(ctx, ln, s.done)
	return nil
}

// run initializes the endpoint and then accepts until ln is closed.
func (s *Server) run(ctx context.Context, ln net.Listener, done chan struct{}) {
	defer close(done)

	if err := s.endpoint.Init(); err != nil {
		s.logger.Error("endpoint initialization failed, stopping", "error", err)
		s.mu.Lock()
		s.initErr = err
		s.mu.Unlock()
		s.Stop()
		return
	}

	s.mu.Lock()
	if s.state == StateStarting {
		s.state = StateRunning
	}
	s.mu.Unlock()

	s.acceptLoop(ctx, ln)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.logger.Error("accept failed", "error", err)
			return
		}
		s.accepted.Add(1)
		s.metrics.ConnectionAccepted()

		s.metrics.SetAdmissionWaiting(1)
		err = s.gate.Acquire(ctx)
		s.metrics.SetAdmissionWaiting(0)
		if err != nil {
			s.shed.Add(1)
			s.metrics.ConnectionShed(ShedAdmissionTimeout)
			s.logger.Warn("connection shed", "remote", conn.RemoteAddr().String(), "reason", err)
			conn.Close()
			if ctx.Err() != nil {
				return
			}
			continue
		}

		s.handlers.Add(1)
		go s.handle(context.WithoutCancel(ctx), conn)
	}
}

// handle runs one request/response exchange. The gate slot is released even
// when dispatch panics.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	start := time.Now()
	s.metrics.ConnectionStarted()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("connection handler panicked", "panic", r)
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("failed to close connection", "error", err)
		}
		s.metrics.ConnectionFinished()
		s.gate.Release()
		s.handlers.Done()
	}()

	if s.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}

	ctx = logging.WithConnID(ctx, uuid.NewString())
	ctx = logging.WithClientIP(ctx, wire.ClientIP(conn.RemoteAddr()))

	req, err := wire.ReadRequest(conn, conn.RemoteAddr(), s.config.MaxRequestBytes)
	if err != nil {
		reason := ShedReadError
		if errors.Is(err, wire.ErrRequestTooLarge) {
			reason = ShedTooLarge
		}
		s.shed.Add(1)
		s.metrics.ConnectionShed(reason)
		s.logger.WarnContext(ctx, "failed to read request", "reason", reason, "error", err)
		return
	}
	if req.Method() == "" {
		s.logger.DebugContext(ctx, "connection closed without a request")
		return
	}

	ctx = logging.WithRequest(ctx, req.Method(), req.Path())
	ctx, span := s.tracer.StartRequest(ctx, req)

	out := &deadlineWriter{conn: conn, timeout: s.config.WriteTimeout}
	wctx := wire.NewContext(ctx, req, out, s.logger)
	s.endpoint.Dispatch(wctx)

	resp := wctx.Response()
	tracing.EndRequest(span, resp.Status(), resp.BytesWritten(), nil)
	s.metrics.RecordRequest(req.Method(), resp.Status(), time.Since(start), resp.BytesWritten())
	s.served.Add(1)

	s.logger.DebugContext(ctx, "request served",
		"status", resp.Status(),
		"bytes", resp.BytesWritten(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Stop closes the listener. In-flight connections are not cancelled and run
// to completion; use Wait to block until they have.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	s.state = StateStopped

	if s.stats != nil {
		s.stats.Stop()
		s.stats = nil
	}
	s.cancel()
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("failed to close listener", "error", err)
	}
	s.listener = nil
	s.logger.Info("server stopped")
}

// Wait blocks until the accept loop has exited and every admitted connection
// has been handled. It returns the endpoint initialization error, if any.
func (s *Server) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	s.handlers.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initErr
}

// Serve starts the server and blocks until ctx is done or the server stops
// on its own. In-flight connections finish before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	if err := s.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.Stop()
	case <-done:
	}
	return s.Wait()
}

// Port returns the bound port, or -1 when the server is stopped.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return -1
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return -1
}

// Address returns the bound IP address, or "" when the server is stopped.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	return ""
}

// IsRunning reports whether the accept loop is running.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Health reports an error unless the server is running. It has the shape of
// a readiness check.
func (s *Server) Health(ctx context.Context) error {
	if state := s.State(); state != StateRunning {
		return fmt.Errorf("server is %s", state)
	}
	return nil
}

// Stats is a snapshot of the connection counters.
type Stats struct {
	Accepted int64
	Shed     int64
	Served   int64
	InUse    int64
	Waiting  int64
	Capacity int64
}

// Stats returns the connection counters since the server was created.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Load(),
		Shed:     s.shed.Load(),
		Served:   s.served.Load(),
		InUse:    s.gate.InUse(),
		Waiting:  s.gate.Waiting(),
		Capacity: s.gate.Capacity(),
	}
}

// deadlineWriter arms the connection's write deadline on the first write, so
// WriteTimeout bounds sending the response and not the handler's work.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
	armed   bool
}

func (w *deadlineWriter) Write(p []byte) (int, error) {
	if !w.armed && w.timeout > 0 {
		w.armed = true
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
			return 0, err
		}
	}
	return w.conn.Write(p)
}
