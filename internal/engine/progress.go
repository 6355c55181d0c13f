package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
	"github.com/leadforge/leadscreen/internal/util"
)

// ProgressReporter derives progress snapshots from orchestrator state and
// publishes them to the event bus. Publication is fire-and-forget: bus
// failures are logged, never surfaced to the engine.
//
// The reporter publishes one snapshot per completed batch plus one per state
// transition, never more, so the bus is not flooded.
type ProgressReporter struct {
	bus    core.EventBus
	clock  Clock
	logger *slog.Logger

	lastBatchPublished int
}

// ProgressReporterOptions configures a ProgressReporter.
type ProgressReporterOptions struct {
	Bus    core.EventBus
	Clock  Clock
	Logger *slog.Logger
}

// NewProgressReporter creates a ProgressReporter.
func NewProgressReporter(opts ProgressReporterOptions) *ProgressReporter {
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressReporter{
		bus:    opts.Bus,
		clock:  clock,
		logger: logger,
	}
}

// Snapshot builds a point-in-time progress view of the job.
func (r *ProgressReporter) Snapshot(job *model.Job, message string) *model.ProgressSnapshot {
	now := r.clock.Now()

	var pct float64
	if job.RowsTotal > 0 {
		pct = float64(job.RowsProcessed) / float64(job.RowsTotal) * 100
	}

	var elapsed time.Duration
	if job.StartedAt != nil {
		elapsed = now.Sub(*job.StartedAt)
	}

	snapshot := &model.ProgressSnapshot{
		JobID:         job.ID,
		Status:        job.Status,
		Percent:       pct,
		RowsProcessed: job.RowsProcessed,
		RowsTotal:     job.RowsTotal,
		BatchIndex:    job.BatchIndex,
		BatchTotal:    job.BatchTotal,
		Tallies:       job.Tallies,
		Elapsed:       util.FormatDuration(elapsed),
		Message:       message,
		Timestamp:     now,
	}

	// ETA is unknowable until at least one row has completed.
	if job.RowsProcessed > 0 && job.RowsTotal > job.RowsProcessed {
		remaining := time.Duration(
			float64(elapsed) / float64(job.RowsProcessed) * float64(job.RowsTotal-job.RowsProcessed),
		)
		snapshot.ETA = util.FormatDuration(remaining)
	}

	return snapshot
}

// PublishBatch publishes one snapshot for a completed batch. Repeat calls
// for the same batch index are dropped.
func (r *ProgressReporter) PublishBatch(ctx context.Context, job *model.Job, message string) {
	if job.BatchIndex <= r.lastBatchPublished {
		return
	}
	r.lastBatchPublished = job.BatchIndex
	r.publish(ctx, r.Snapshot(job, message))
}

// PublishTransition publishes a snapshot for a job status transition.
func (r *ProgressReporter) PublishTransition(ctx context.Context, job *model.Job, message string) {
	r.publish(ctx, r.Snapshot(job, message))
}

func (r *ProgressReporter) publish(ctx context.Context, snapshot *model.ProgressSnapshot) {
	if r.bus == nil {
		return
	}
	if err := r.bus.PublishProgress(ctx, snapshot); err != nil {
		r.logger.WarnContext(ctx, "failed to publish progress snapshot",
			"job_id", snapshot.JobID,
			"error", err)
	}
}
