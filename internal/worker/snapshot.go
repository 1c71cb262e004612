package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/openacre/loam/internal/snapshot"
)

// SnapshotStore defines the store operations needed by the snapshot worker.
type SnapshotStore interface {
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
}

// SnapshotGenerationWorker generates periodic database snapshots and
// uploads them to S3 when an uploader is provided.
type SnapshotGenerationWorker struct {
	store    SnapshotStore
	uploader snapshot.Uploader
	interval time.Duration
}

// NewSnapshotGenerationWorker creates a worker with the given store and interval.
// The uploader is optional; if nil, snapshots stay local.
func NewSnapshotGenerationWorker(store SnapshotStore, interval time.Duration, uploader snapshot.Uploader) *SnapshotGenerationWorker {
	return &SnapshotGenerationWorker{
		store:    store,
		uploader: uploader,
		interval: interval,
	}
}

// Run starts the worker loop. Generates a snapshot immediately on start,
// then on each interval. Respects context cancellation for graceful shutdown.
func (w *SnapshotGenerationWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "snapshot-generation",
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Generate snapshot immediately on start
	w.generateSnapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "snapshot-generation",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.generateSnapshot(ctx)
		}
	}
}

// generateSnapshot generates a snapshot, then uploads it if configured.
func (w *SnapshotGenerationWorker) generateSnapshot(ctx context.Context) {
	slog.Info("snapshot generation started",
		"component", "worker",
		"action", "snapshot_start",
	)

	if err := w.store.GenerateSnapshot(ctx); err != nil {
		// Check if it's a context cancellation (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapshot generation failed",
			"component", "worker",
			"action", "snapshot_failed",
			"error", err,
		)
		return
	}

	if w.uploader != nil {
		w.uploadSnapshot(ctx)
	}
}

// uploadSnapshot uploads the current snapshot to S3.
// Upload failures are logged as warnings but are NOT fatal; the local
// snapshot remains valid.
func (w *SnapshotGenerationWorker) uploadSnapshot(ctx context.Context) {
	path, err := w.store.GetSnapshotPath(ctx)
	if err != nil {
		slog.Warn("failed to get snapshot path for upload",
			"component", "worker",
			"action", "snapshot_upload_failed",
			"error", err,
		)
		return
	}

	if err := w.uploader.Upload(ctx, path); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapshot upload to S3 failed",
			"component", "worker",
			"action", "snapshot_upload_failed",
			"error", err,
		)
		return
	}

	slog.Info("snapshot uploaded to S3",
		"component", "worker",
		"action", "snapshot_uploaded",
	)
}
