package worker

import (
	"context"
	"log/slog"
	"time"
)

// SweepStore defines the store operations needed by the stale sweeper.
type SweepStore interface {
	SweepStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error)
}

// StaleSweepWorker periodically fails inquiries stuck in processing.
// Generation runs inside the triggering request, so a processing row older
// than maxAge means the server died before recording an outcome.
type StaleSweepWorker struct {
	store    SweepStore
	interval time.Duration
	maxAge   time.Duration
}

// NewStaleSweepWorker creates a worker with the given store, interval, and age cutoff.
func NewStaleSweepWorker(store SweepStore, interval, maxAge time.Duration) *StaleSweepWorker {
	return &StaleSweepWorker{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the worker loop. Sweeps immediately on start, then on each
// interval. Blocks until ctx is cancelled.
func (w *StaleSweepWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "stale-sweep",
		"interval", w.interval.String(),
		"max_age", w.maxAge.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Sweep immediately: rows left processing by a crash stay stuck until
	// someone fails them.
	w.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "stale-sweep",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

// runSweep executes a single sweep cycle.
func (w *StaleSweepWorker) runSweep(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-w.maxAge)

	slog.Debug("sweep cycle started",
		"component", "worker",
		"action", "sweep_start",
		"cutoff", cutoff.Format(time.RFC3339),
	)

	affected, err := w.store.SweepStaleProcessing(ctx, cutoff)
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return
		}
		slog.Error("sweep failed",
			"component", "worker",
			"action", "sweep_failed",
			"error", err,
		)
		return
	}

	if affected > 0 {
		slog.Info("sweep cycle completed",
			"component", "worker",
			"action", "sweep_complete",
			"affected", affected,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
