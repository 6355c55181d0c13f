package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
	apperrors "github.com/leadforge/leadscreen/internal/errors"
	"github.com/leadforge/leadscreen/internal/observability/statsd"
)

// Service names used for breaker/retry policy lookup.
const (
	ServiceEnrichment = "enrichment"
	ServiceCompliance = "compliance"
)

// OrchestratorOptions configures an Orchestrator for one job.
type OrchestratorOptions struct {
	Jobs        core.JobStore
	Source      core.CandidateSource
	Enrichment  core.EnrichmentClient
	Compliance  core.ComplianceClient
	DNC         core.DNCLookup
	Cancel      core.CancelFlag
	Executor    *Executor
	Reporter    *ProgressReporter
	Accumulator *Accumulator

	Logger  *slog.Logger
	Metrics statsd.Sink

	// BatchSize is the number of candidate rows per batch.
	BatchSize int

	// Per-stage worker pool sizing.
	EnrichmentPool WorkerPoolConfig
	CompliancePool WorkerPoolConfig
}

// Orchestrator drives one screening job through the pipeline: it pulls
// pre-filtered candidate batches, fans each batch out through the enrichment
// and compliance stages, merges tallies after each stage join, accumulates
// annotated records, and performs the final upload.
//
// The orchestrator itself is single-threaded control flow; batches are
// sequential relative to each other, records within a batch are concurrent.
type Orchestrator struct {
	jobs        core.JobStore
	source      core.CandidateSource
	enrichment  core.EnrichmentClient
	compliance  core.ComplianceClient
	dnc         core.DNCLookup
	cancel      core.CancelFlag
	executor    *Executor
	reporter    *ProgressReporter
	accumulator *Accumulator

	logger  *slog.Logger
	metrics statsd.Sink

	batchSize      int
	enrichmentPool WorkerPoolConfig
	compliancePool WorkerPoolConfig
}

// NewOrchestrator creates an Orchestrator from options.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("job store is required")
	case opts.Source == nil:
		return nil, errors.New("candidate source is required")
	case opts.Enrichment == nil:
		return nil, errors.New("enrichment client is required")
	case opts.Compliance == nil:
		return nil, errors.New("compliance client is required")
	case opts.DNC == nil:
		return nil, errors.New("dnc lookup is required")
	case opts.Executor == nil:
		return nil, errors.New("executor is required")
	case opts.Accumulator == nil:
		return nil, errors.New("accumulator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NewProgressReporter(ProgressReporterOptions{Logger: logger})
	}
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 250
	}

	return &Orchestrator{
		jobs:           opts.Jobs,
		source:         opts.Source,
		enrichment:     opts.Enrichment,
		compliance:     opts.Compliance,
		dnc:            opts.DNC,
		cancel:         opts.Cancel,
		executor:       opts.Executor,
		reporter:       reporter,
		accumulator:    opts.Accumulator,
		logger:         logger,
		metrics:        opts.Metrics,
		batchSize:      batchSize,
		enrichmentPool: opts.EnrichmentPool,
		compliancePool: opts.CompliancePool,
	}, nil
}

// Run executes the job to a terminal status. The returned error is non-nil
// only for failed jobs; completion and cancellation both return nil.
func (o *Orchestrator) Run(ctx context.Context, job *model.Job) error {
	if err := o.start(ctx, job); err != nil {
		return o.fail(ctx, job, err)
	}

	if err := o.processBatches(ctx, job); err != nil {
		if errors.Is(err, errJobCancelled) {
			return nil
		}
		return o.fail(ctx, job, err)
	}
	if job.Status == model.JobStatusCancelled {
		return nil
	}

	if err := o.uploadResults(ctx, job); err != nil {
		return o.fail(ctx, job, err)
	}
	return nil
}

// errJobCancelled is an internal signal: cancellation is a normal terminal
// transition, not an error.
var errJobCancelled = errors.New("job cancelled")

func (o *Orchestrator) start(ctx context.Context, job *model.Job) error {
	if err := job.Transition(model.JobStatusRunning); err != nil {
		return err
	}

	total, err := o.source.CountCandidates(ctx, job.ScriptID)
	if err != nil {
		return fmt.Errorf("count candidates: %w", err)
	}
	if job.RowLimit != nil && *job.RowLimit < total {
		total = *job.RowLimit
	}
	job.RowsTotal = total
	job.BatchTotal = int(math.Ceil(float64(total) / float64(o.batchSize)))

	if err := o.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("persist job start: %w", err)
	}

	o.logger.InfoContext(ctx, "screening job started",
		"job_id", job.ID,
		"script_id", job.ScriptID,
		"rows_total", job.RowsTotal,
		"batch_total", job.BatchTotal)
	o.reporter.PublishTransition(ctx, job, "screening started")
	return nil
}

func (o *Orchestrator) processBatches(ctx context.Context, job *model.Job) error {
	offset := 0
	for job.RowsProcessed < job.RowsTotal {
		limit := o.batchSize
		if remaining := job.RowsTotal - job.RowsProcessed; remaining < limit {
			limit = remaining
		}

		records, err := o.source.FetchCandidates(ctx, core.FetchCandidatesParams{
			ScriptID: job.ScriptID,
			Offset:   offset,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("fetch batch %d: %w", job.BatchIndex+1, err)
		}
		if len(records) == 0 {
			break // source exhausted earlier than the initial count
		}
		offset += len(records)

		batch := &model.Batch{Index: job.BatchIndex + 1, Records: records}
		if err := o.processBatch(ctx, job, batch); err != nil {
			return err
		}

		// Cancellation is honored only at batch boundaries; in-flight calls
		// for the batch above have already finished.
		cancelled, err := o.cancelRequested(ctx, job)
		if err != nil {
			o.logger.WarnContext(ctx, "failed to read cancellation flag",
				"job_id", job.ID,
				"error", err)
		}
		if cancelled {
			return o.cancelJob(ctx, job)
		}
	}
	return nil
}

// processBatch runs one batch through all stages and merges results. Stage
// degradation (retries exhausted, breaker open) never fails the batch; the
// affected stage's contribution is simply unavailable.
func (o *Orchestrator) processBatch(ctx context.Context, job *model.Job, batch *model.Batch) error {
	started := time.Now()

	for _, record := range batch.Records {
		record.Validate()
	}

	o.runEnrichmentStage(ctx, batch)

	if err := o.runComplianceStage(ctx, batch); err != nil {
		return err
	}
	if err := o.runDNCStage(ctx, batch); err != nil {
		return err
	}

	// Single-writer merge after the stage joins: workers never touch the
	// job's aggregate counters.
	job.Tallies.Add(batch.TallyRecords())
	job.RowsProcessed += batch.Size()
	job.BatchIndex = batch.Index
	o.accumulator.Append(batch)

	if err := o.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("persist batch %d counters: %w", batch.Index, err)
	}

	o.logger.InfoContext(ctx, "batch processed",
		"job_id", job.ID,
		"batch_index", batch.Index,
		"batch_total", job.BatchTotal,
		"batch_size", batch.Size(),
		"rows_processed", job.RowsProcessed)
	if o.metrics != nil {
		o.metrics.Timing("engine.batch.duration", time.Since(started), nil)
		o.metrics.Count("engine.batch.rows", int64(batch.Size()), nil)
	}

	message := fmt.Sprintf("processed batch %d of %d", batch.Index, job.BatchTotal)
	o.reporter.PublishBatch(ctx, job, message)
	return nil
}

// runEnrichmentStage fans record enrichment out across a pool sized for the
// batch. Per-record failures degrade that record only.
func (o *Orchestrator) runEnrichmentStage(ctx context.Context, batch *model.Batch) {
	candidates := make([]*model.Record, 0, batch.Size())
	for _, record := range batch.Records {
		if !record.Invalid {
			candidates = append(candidates, record)
		}
	}
	if len(candidates) == 0 {
		return
	}

	workers := PoolSize(len(candidates), o.enrichmentPool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, record := range candidates {
		g.Go(func() error {
			err := o.executor.Do(gctx, ServiceEnrichment, func(callCtx context.Context) error {
				return o.enrichment.Enrich(callCtx, record)
			})
			if err != nil {
				// Degraded, not fatal: the record proceeds without contacts.
				o.logger.WarnContext(gctx, "enrichment unavailable for record",
					"lead_id", record.LeadID,
					"error", err)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; the join is the barrier

	o.logger.DebugContext(ctx, "enrichment stage complete",
		"batch_index", batch.Index,
		"workers", workers,
		"records", len(candidates))
}

// runComplianceStage screens the batch's merged phone set against the
// litigation list in provider-bounded chunks, concurrently.
func (o *Orchestrator) runComplianceStage(ctx context.Context, batch *model.Batch) error {
	phones := batch.PhoneKeys()
	if len(phones) == 0 {
		return nil
	}

	chunks := chunkKeys(phones, o.compliance.MaxBatchSize())
	workers := PoolSize(len(phones), o.compliancePool)
	if workers > len(chunks) {
		workers = len(chunks)
	}

	flagged := make(map[string]bool, len(phones))
	results := make(chan map[string]bool, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range chunks {
		g.Go(func() error {
			err := o.executor.Do(gctx, ServiceCompliance, func(callCtx context.Context) error {
				res, callErr := o.compliance.ScreenLitigators(callCtx, chunk)
				if callErr != nil {
					return callErr
				}
				results <- res
				return nil
			})
			if err != nil {
				// Degraded: this chunk's litigator flags are unavailable.
				o.logger.WarnContext(gctx, "litigator screening unavailable for chunk",
					"phones", len(chunk),
					"error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for res := range results {
		for phone, hit := range res {
			if hit {
				flagged[phone] = true
			}
		}
	}

	for _, record := range batch.Records {
		for _, phone := range record.Phones {
			if flagged[phone.Number] {
				record.InLitigatorList = true
				break
			}
		}
	}
	return nil
}

// runDNCStage checks the batch's phone set against the local DNC store with
// one chunked lookup. A store failure degrades the stage, not the job.
func (o *Orchestrator) runDNCStage(ctx context.Context, batch *model.Batch) error {
	phones := batch.PhoneKeys()
	if len(phones) == 0 {
		return nil
	}

	matched, err := o.dnc.MatchedKeys(ctx, phones)
	if err != nil {
		if apperrors.IsSchemaMismatch(err) {
			return fmt.Errorf("dnc lookup: %w", err)
		}
		o.logger.WarnContext(ctx, "dnc lookup unavailable for batch",
			"batch_index", batch.Index,
			"error", err)
		return nil
	}

	for _, record := range batch.Records {
		for i := range record.Phones {
			if _, ok := matched[record.Phones[i].Number]; ok {
				record.Phones[i].InDNC = true
			}
		}
	}
	return nil
}

func (o *Orchestrator) uploadResults(ctx context.Context, job *model.Job) error {
	if err := job.Transition(model.JobStatusUploading); err != nil {
		return err
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("persist uploading status: %w", err)
	}
	// The upload phase has no per-row progress; announce it explicitly.
	o.reporter.PublishTransition(ctx, job, "uploading results")

	written, err := o.accumulator.Upload(ctx, job.ID)
	if err != nil {
		return err
	}

	if err := job.Transition(model.JobStatusCompleted); err != nil {
		return err
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("persist completed status: %w", err)
	}

	o.logger.InfoContext(ctx, "screening job completed",
		"job_id", job.ID,
		"rows_processed", job.RowsProcessed,
		"records_uploaded", written,
		"clean", job.Tallies.Clean,
		"flagged_litigator", job.Tallies.FlaggedLitigator,
		"flagged_dnc", job.Tallies.FlaggedDNC)
	o.reporter.PublishTransition(ctx, job, "screening completed")
	return nil
}

func (o *Orchestrator) cancelRequested(ctx context.Context, job *model.Job) (bool, error) {
	if o.cancel == nil {
		return false, nil
	}
	return o.cancel.IsCancelRequested(ctx, job.ID)
}

// cancelJob honors a cancellation request: best-effort partial upload, then
// the cancelled terminal transition. Returns errJobCancelled as a signal.
func (o *Orchestrator) cancelJob(ctx context.Context, job *model.Job) error {
	written, err := o.accumulator.UploadPartial(ctx, job.ID)
	if err != nil {
		o.logger.ErrorContext(ctx, "partial upload failed on cancellation",
			"job_id", job.ID,
			"error", err)
	}

	if err := job.Transition(model.JobStatusCancelled); err != nil {
		return err
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("persist cancelled status: %w", err)
	}

	o.logger.InfoContext(ctx, "screening job cancelled",
		"job_id", job.ID,
		"rows_processed", job.RowsProcessed,
		"records_uploaded", written)
	o.reporter.PublishTransition(ctx, job, "screening cancelled")
	return errJobCancelled
}

// fail transitions the job to failed, preserving whatever was accumulated so
// the caller can inspect partial results.
func (o *Orchestrator) fail(ctx context.Context, job *model.Job, cause error) error {
	msg := cause.Error()
	job.LastError = &msg
	if err := job.Transition(model.JobStatusFailed); err != nil {
		o.logger.ErrorContext(ctx, "could not transition job to failed",
			"job_id", job.ID,
			"status", string(job.Status),
			"error", err)
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		o.logger.ErrorContext(ctx, "could not persist failed status",
			"job_id", job.ID,
			"error", err)
	}

	o.logger.ErrorContext(ctx, "screening job failed",
		"job_id", job.ID,
		"rows_processed", job.RowsProcessed,
		"records_accumulated", o.accumulator.Len(),
		"error", cause)
	o.reporter.PublishTransition(ctx, job, "screening failed: "+msg)
	return cause
}

// chunkKeys splits keys into size-bounded chunks, preserving order.
func chunkKeys(keys []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var chunks [][]string
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
