package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type reporter interface {
	SetServing(ok bool)
}

// Worker pings the database on a ticker and publishes the result to the
// gRPC health service.
type Worker struct {
	db           pinger
	reporter     reporter
	pollInterval time.Duration
	healthy      bool
	checked      bool
	stopCh       chan struct{}
}

// NewWorker creates a new health worker.
func NewWorker(db pinger, reporter reporter) *Worker {
	pollIntervalSeconds := viper.GetInt("health.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	return newWorker(db, reporter, time.Duration(pollIntervalSeconds)*time.Second)
}

func newWorker(db pinger, reporter reporter, pollInterval time.Duration) *Worker {
	return &Worker{
		db:           db,
		reporter:     reporter,
		pollInterval: pollInterval,
		stopCh:       make(chan struct{}),
	}
}

// Start checks the database immediately and then on every tick until ctx is
// done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Health worker started", "poll_interval", w.pollInterval)
	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Health worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Health worker stopped")

			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, w.pollInterval)
	defer cancel()

	err := w.db.Ping(pingCtx)
	healthy := err == nil

	if !w.checked || healthy != w.healthy {
		if healthy {
			slog.Info("Database reachable")
		} else {
			slog.Error("Database unreachable", "error", err)
		}
	}
	w.healthy, w.checked = healthy, true

	w.reporter.SetServing(healthy)
}
