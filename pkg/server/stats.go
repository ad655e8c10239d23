package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// StatsReporter logs a snapshot of the server counters on a cron schedule.
type StatsReporter struct {
	server   *Server
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	last     Stats
}

// NewStatsReporter creates a reporter for server. schedule uses the standard
// five-field cron syntax, for example "*/5 * * * *" for every five minutes.
func NewStatsReporter(server *Server, schedule string, logger *slog.Logger) *StatsReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsReporter{
		server:   server,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "server.stats"),
	}
}

// Start schedules the reporter. It stops when ctx is done or Stop is called.
func (r *StatsReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, r.Report); err != nil {
		return fmt.Errorf("failed to schedule stats report: %w", err)
	}

	r.cron.Start()
	r.running = true
	r.logger.Debug("stats reporter started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Report logs the current counters and the change since the previous report.
func (r *StatsReporter) Report() {
	stats := r.server.Stats()

	r.mu.Lock()
	last := r.last
	r.last = stats
	r.mu.Unlock()

	r.logger.Info("server stats",
		"accepted", stats.Accepted,
		"accepted_delta", stats.Accepted-last.Accepted,
		"shed", stats.Shed,
		"shed_delta", stats.Shed-last.Shed,
		"served", stats.Served,
		"in_use", stats.InUse,
		"waiting", stats.Waiting,
		"capacity", stats.Capacity,
	)
}

// Stop stops the schedule and waits for a running report to finish.
func (r *StatsReporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Debug("stats reporter stopped")
}

// NextRun returns the next scheduled report time, or nil when nothing is
// scheduled.
func (r *StatsReporter) NextRun() *time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
