package server

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"mercator-hq/lantern/pkg/router"
)

func TestStatsReporter_InvalidSchedule(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	reporter := NewStatsReporter(srv, "not a schedule", nil)

	if err := reporter.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestStatsReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	srv := newTestServer(t, testConfig(), hello)
	srv.accepted.Add(3)
	srv.shed.Add(1)

	reporter := NewStatsReporter(srv, "@every 1h", logger)
	reporter.Report()
	srv.accepted.Add(2)
	reporter.Report()

	out := buf.String()
	for _, want := range []string{"accepted=3", "accepted_delta=3", "shed=1", "accepted=5", "accepted_delta=2", "component=server.stats"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatsReporter_Lifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	reporter := NewStatsReporter(srv, "*/5 * * * *", nil)

	if reporter.NextRun() != nil {
		t.Error("expected no next run before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := reporter.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	next := reporter.NextRun()
	if next == nil || next.After(time.Now().Add(6*time.Minute)) {
		t.Errorf("unexpected next run: %v", next)
	}

	cancel()
	waitFor(t, func() bool {
		reporter.mu.Lock()
		defer reporter.mu.Unlock()
		return !reporter.running
	})
}

func TestServer_StatsScheduleStarts(t *testing.T) {
	cfg := testConfig()
	cfg.StatsSchedule = "@every 1h"
	srv := newTestServer(t, cfg, func(e *router.Endpoint) error { return nil })
	startServer(t, srv)

	srv.mu.Lock()
	reporter := srv.stats
	srv.mu.Unlock()
	if reporter == nil || reporter.NextRun() == nil {
		t.Error("expected stats reporter to be scheduled")
	}
}
