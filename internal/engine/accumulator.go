package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
)

// Accumulator buffers every annotated record across the whole job and
// performs exactly one bulk write to the sink at completion or cancellation.
// The sink favors large batched writes, so memory is traded for throughput.
//
// Only the orchestrator's control goroutine appends, after each stage join,
// so no synchronization is needed.
type Accumulator struct {
	sink   core.ResultSink
	logger *slog.Logger

	// DiscardOnCancel skips the partial write when a job is cancelled.
	discardOnCancel bool

	records  []*model.Record
	uploaded bool
}

// AccumulatorOptions configures an Accumulator.
type AccumulatorOptions struct {
	Sink            core.ResultSink
	Logger          *slog.Logger
	DiscardOnCancel bool
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator(opts AccumulatorOptions) *Accumulator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Accumulator{
		sink:            opts.Sink,
		logger:          logger,
		discardOnCancel: opts.DiscardOnCancel,
	}
}

// Append merges a completed batch's records into the buffer.
func (a *Accumulator) Append(batch *model.Batch) {
	a.records = append(a.records, batch.Records...)
}

// Len returns the number of buffered records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns the buffered records. The caller must not mutate it while
// the job is still running.
func (a *Accumulator) Records() []*model.Record {
	return a.records
}

// Upload performs the single bulk write for a completed job.
func (a *Accumulator) Upload(ctx context.Context, jobID string) (int, error) {
	return a.upload(ctx, jobID)
}

// UploadPartial writes whatever was accumulated when a job is cancelled.
// Best effort: when DiscardOnCancel is configured, nothing is written.
func (a *Accumulator) UploadPartial(ctx context.Context, jobID string) (int, error) {
	if a.discardOnCancel {
		a.logger.InfoContext(ctx, "discarding accumulated records on cancellation",
			"job_id", jobID,
			"records", len(a.records))
		return 0, nil
	}
	return a.upload(ctx, jobID)
}

func (a *Accumulator) upload(ctx context.Context, jobID string) (int, error) {
	if a.uploaded {
		return 0, fmt.Errorf("job %s already uploaded", jobID)
	}
	if len(a.records) == 0 {
		a.uploaded = true
		return 0, nil
	}

	written, err := a.sink.BulkInsert(ctx, jobID, a.records)
	if err != nil {
		return 0, fmt.Errorf("bulk insert results: %w", err)
	}
	a.uploaded = true

	a.logger.InfoContext(ctx, "uploaded job results",
		"job_id", jobID,
		"records", written)
	return written, nil
}
