package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/telemetry/metrics"
	"mercator-hq/lantern/pkg/wire"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddress:    "127.0.0.1:0",
		MaxConcurrent:    4,
		AdmissionTimeout: time.Second,
		ReadTimeout:      2 * time.Second,
		WriteTimeout:     2 * time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig, init router.InitFunc) *Server {
	t.Helper()
	srv, err := New(cfg, router.NewEndpoint("", init))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	srv.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv
}

func startServer(t *testing.T, srv *Server) {
	t.Helper()
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		srv.Wait()
	})
	waitFor(t, func() bool { return srv.IsRunning() })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func addr(srv *Server) string {
	return net.JoinHostPort(srv.Address(), strconv.Itoa(srv.Port()))
}

// send writes raw to a fresh connection without waiting for the answer.
func send(t *testing.T, srv *Server, raw string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr(srv))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if _, err := conn.Write([]byte(raw)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return conn
}

func readAll(t *testing.T, conn net.Conn) string {
	t.Helper()
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, err := io.ReadAll(conn)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		var netErr net.Error
		if !errors.As(err, &netErr) || netErr.Timeout() {
			t.Fatalf("read failed: %v", err)
		}
	}
	return string(data)
}

func roundTrip(t *testing.T, srv *Server, raw string) string {
	t.Helper()
	return readAll(t, send(t, srv, raw))
}

func hello(e *router.Endpoint) error {
	e.GET("/hello", func(ctx *wire.Context) error {
		ctx.Send("hello " + ctx.Request().ClientIP())
		return nil
	})
	return nil
}

func TestNew_Defaults(t *testing.T) {
	srv, err := New(config.ServerConfig{}, router.NewEndpoint("", nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if srv.Gate().Capacity() != config.DefaultMaxConcurrent {
		t.Errorf("expected capacity %d, got %d", config.DefaultMaxConcurrent, srv.Gate().Capacity())
	}
	if srv.Gate().Timeout() != config.DefaultAdmissionTimeout {
		t.Errorf("expected timeout %v, got %v", config.DefaultAdmissionTimeout, srv.Gate().Timeout())
	}
	if srv.State() != StateStopped || srv.Port() != -1 || srv.Address() != "" {
		t.Errorf("expected stopped server, got state=%s port=%d address=%q", srv.State(), srv.Port(), srv.Address())
	}
}

func TestNew_NilEndpoint(t *testing.T) {
	if _, err := New(testConfig(), nil); err == nil {
		t.Error("expected error for nil endpoint")
	}
}

func TestServer_Lifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig(), hello)

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, func() bool { return srv.IsRunning() })

	port := srv.Port()
	if port <= 0 {
		t.Errorf("expected ephemeral port, got %d", port)
	}
	if srv.Address() != "127.0.0.1" {
		t.Errorf("expected 127.0.0.1, got %q", srv.Address())
	}

	// Start while running is a no-op.
	if err := srv.Start(); err != nil {
		t.Errorf("second Start failed: %v", err)
	}
	if srv.Port() != port {
		t.Errorf("second Start rebound the listener: %d != %d", srv.Port(), port)
	}
	if err := srv.Health(context.Background()); err != nil {
		t.Errorf("expected healthy server, got %v", err)
	}

	srv.Stop()
	if err := srv.Wait(); err != nil {
		t.Errorf("Wait returned %v", err)
	}
	if srv.State() != StateStopped || srv.Port() != -1 {
		t.Errorf("expected stopped, got state=%s port=%d", srv.State(), srv.Port())
	}
	if err := srv.Health(context.Background()); err == nil {
		t.Error("expected health error for stopped server")
	}

	// Stop is idempotent.
	srv.Stop()
}

func TestServer_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.ListenAddress = ln.Addr().String()
	srv := newTestServer(t, cfg, hello)

	if err := srv.Start(); err == nil {
		t.Fatal("expected bind error")
	}
	if srv.State() != StateStopped {
		t.Errorf("expected stopped state, got %s", srv.State())
	}
}

func TestServer_InitFailureStops(t *testing.T) {
	srv := newTestServer(t, testConfig(), func(e *router.Endpoint) error {
		return errors.New("no routes")
	})

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := srv.Wait(); err == nil || !strings.Contains(err.Error(), "no routes") {
		t.Errorf("expected init error, got %v", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("expected stopped state, got %s", srv.State())
	}
}

func TestServer_Serve(t *testing.T) {
	srv := newTestServer(t, testConfig(), hello)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx) }()
	waitFor(t, func() bool { return srv.IsRunning() })

	if err := srv.Serve(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_RoundTrip(t *testing.T) {
	srv := newTestServer(t, testConfig(), hello)
	startServer(t, srv)

	tests := []struct {
		name   string
		raw    string
		status string
		body   string
	}{
		{
			name:   "matching route",
			raw:    "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n",
			status: "HTTP/1.1 200",
			body:   "hello 127.0.0.1",
		},
		{
			name:   "no route",
			raw:    "GET /missing HTTP/1.1\r\n\r\n",
			status: "HTTP/1.1 404",
			body:   router.NotFoundBody,
		},
		{
			name:   "wrong method",
			raw:    "POST /hello HTTP/1.1\r\nContent-Length: 0\r\n\r\n",
			status: "HTTP/1.1 404",
			body:   router.NotFoundBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := roundTrip(t, srv, tt.raw)
			head, body, _ := strings.Cut(out, "\r\n\r\n")
			if !strings.HasPrefix(head, tt.status+"\r\n") {
				t.Errorf("expected status %q, got %q", tt.status, head)
			}
			if body != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, body)
			}
		})
	}

	waitFor(t, func() bool { return srv.Stats().Served == int64(len(tests)) })
	if stats := srv.Stats(); stats.InUse != 0 || stats.Shed != 0 {
		t.Errorf("unexpected stats after round trips: %+v", stats)
	}
}

func TestServer_SlowHandlerKeepsResponse(t *testing.T) {
	cfg := testConfig()
	cfg.WriteTimeout = 100 * time.Millisecond
	srv := newTestServer(t, cfg, func(e *router.Endpoint) error {
		e.GET("/slow", func(ctx *wire.Context) error {
			time.Sleep(300 * time.Millisecond)
			ctx.Send("finally")
			return nil
		})
		return nil
	})
	startServer(t, srv)

	raw := roundTrip(t, srv, "GET /slow HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(raw, "HTTP/1.1 200\r\n") || !strings.HasSuffix(raw, "\r\n\r\nfinally") {
		t.Errorf("expected full response after slow handler, got %q", raw)
	}
}

func TestServer_RequestTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBytes = 64
	srv := newTestServer(t, cfg, hello)
	startServer(t, srv)

	out := roundTrip(t, srv, "POST /hello HTTP/1.1\r\nContent-Length: 200\r\n\r\n"+strings.Repeat("x", 200))
	if out != "" {
		t.Errorf("expected connection closed without response, got %q", out)
	}
	waitFor(t, func() bool { return srv.Stats().Shed == 1 })
}

func TestServer_HandlerFailureReleasesSlot(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	srv := newTestServer(t, cfg, func(e *router.Endpoint) error {
		e.GET("/panic", func(ctx *wire.Context) error {
			panic("boom")
		})
		e.GET("/fail", func(ctx *wire.Context) error {
			return errors.New("broken")
		})
		return nil
	})
	startServer(t, srv)

	for _, path := range []string{"/fail", "/panic", "/fail"} {
		out := roundTrip(t, srv, "GET "+path+" HTTP/1.1\r\n\r\n")
		if !strings.HasPrefix(out, "HTTP/1.1 500\r\n") {
			t.Errorf("%s: expected 500, got %q", path, out)
		}
	}
	waitFor(t, func() bool { return srv.Gate().InUse() == 0 })
}

func TestServer_AdmissionSheds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrent = 2
	cfg.AdmissionTimeout = 100 * time.Millisecond

	release := make(chan struct{})
	srv := newTestServer(t, cfg, func(e *router.Endpoint) error {
		e.GET("/slow", func(ctx *wire.Context) error {
			<-release
			ctx.Send("done")
			return nil
		})
		return nil
	})
	startServer(t, srv)

	first := send(t, srv, "GET /slow HTTP/1.1\r\n\r\n")
	second := send(t, srv, "GET /slow HTTP/1.1\r\n\r\n")
	waitFor(t, func() bool { return srv.Gate().InUse() == 2 })

	start := time.Now()
	third := send(t, srv, "GET /slow HTTP/1.1\r\n\r\n")
	if out := readAll(t, third); out != "" {
		t.Errorf("expected shed connection without response, got %q", out)
	}
	if elapsed := time.Since(start); elapsed < cfg.AdmissionTimeout {
		t.Errorf("connection shed before the admission timeout: %v", elapsed)
	}
	if srv.Stats().Shed != 1 {
		t.Errorf("expected 1 shed connection, got %d", srv.Stats().Shed)
	}

	close(release)
	for _, conn := range []net.Conn{first, second} {
		if out := readAll(t, conn); !strings.HasSuffix(out, "done") {
			t.Errorf("expected admitted request to finish, got %q", out)
		}
	}
}

func TestServer_AdmissionWaits(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	cfg.AdmissionTimeout = 2 * time.Second

	srv := newTestServer(t, cfg, func(e *router.Endpoint) error {
		e.GET("/slow", func(ctx *wire.Context) error {
			time.Sleep(100 * time.Millisecond)
			ctx.Send("done")
			return nil
		})
		return nil
	})
	startServer(t, srv)

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.Dial("tcp", addr(srv))
			if err != nil {
				return
			}
			defer conn.Close()
			if _, err := conn.Write([]byte("GET /slow HTTP/1.1\r\n\r\n")); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			data, _ := io.ReadAll(conn)
			results[i] = string(data)
		}()
	}
	wg.Wait()

	for i, out := range results {
		if !strings.HasSuffix(out, "done") {
			t.Errorf("request %d: expected response, got %q", i, out)
		}
	}
	if srv.Stats().Shed != 0 {
		t.Errorf("expected no shed connections, got %d", srv.Stats().Shed)
	}
}

func TestServer_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Namespace: "test", Subsystem: "server"}, registry)

	srv := newTestServer(t, testConfig(), hello)
	srv.SetMetrics(collector)
	startServer(t, srv)

	roundTrip(t, srv, "GET /hello HTTP/1.1\r\n\r\n")
	roundTrip(t, srv, "GET /nothing HTTP/1.1\r\n\r\n")
	waitFor(t, func() bool { return srv.Stats().Served == 2 })

	if got := counterValue(t, registry, "test_server_connections_accepted_total"); got != 2 {
		t.Errorf("expected 2 accepted connections, got %v", got)
	}
	count, err := testutil.GatherAndCount(registry, "test_server_requests_total")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 request series, got %d", count)
	}
	if got := counterValue(t, registry, "test_server_admission_capacity"); got != 4 {
		t.Errorf("expected admission capacity 4, got %v", got)
	}
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}
