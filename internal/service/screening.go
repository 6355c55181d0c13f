// Package service contains the business logic layer. Services depend on
// core port interfaces, never on concrete data or client implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
)

// JobRunner executes a screening job to completion. The engine orchestrator
// satisfies this; tests substitute a stub.
type JobRunner interface {
	Run(ctx context.Context, job *model.Job) error
}

// SnapshotStore reads the latest published progress snapshot for a job.
type SnapshotStore interface {
	LatestSnapshot(ctx context.Context, jobID string) (*model.ProgressSnapshot, error)
}

// ScreeningServiceOptions groups dependencies for ScreeningService.
type ScreeningServiceOptions struct {
	Jobs      core.JobStore   // Required: job persistence
	Runner    JobRunner       // Required: executes jobs
	Cancel    core.CancelFlag // Required: cooperative cancellation flag
	Snapshots SnapshotStore   // Optional: progress snapshot reads for Status
	Logger    *slog.Logger    // Optional: structured logger
}

// ScreeningService is the job control surface. It creates screening jobs,
// runs each one on its own goroutine, requests cooperative cancellation,
// and reports job status with the latest progress snapshot.
//
// Shutdown cancels the contexts of all running jobs and waits for them to
// drain; the orchestrator observes the cancellation at the next batch
// boundary.
type ScreeningService struct {
	jobs      core.JobStore
	runner    JobRunner
	cancel    core.CancelFlag
	snapshots SnapshotStore
	logger    *slog.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	running map[string]context.CancelFunc
	closed  bool
}

// JobStatusView combines the persisted job row with its most recent
// progress snapshot, which may be nil when none was published yet.
type JobStatusView struct {
	Job      *model.Job              `json:"job"`
	Progress *model.ProgressSnapshot `json:"progress,omitempty"`
}

// ErrServiceClosed is returned by StartJob after Shutdown has begun.
var ErrServiceClosed = errors.New("screening service is shut down")

// NewScreeningService constructs a new ScreeningService.
func NewScreeningService(opts ScreeningServiceOptions) (*ScreeningService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobStore is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("JobRunner is required")
	}
	if opts.Cancel == nil {
		return nil, errors.New("CancelFlag is required")
	}

	return &ScreeningService{
		jobs:      opts.Jobs,
		runner:    opts.Runner,
		cancel:    opts.Cancel,
		snapshots: opts.Snapshots,
		logger:    resolveLogger(opts.Logger),
		running:   make(map[string]context.CancelFunc),
	}, nil
}

// StartJob creates a pending job for the script and starts running it on a
// dedicated goroutine. The returned job reflects the persisted pending row;
// callers follow progress via Status.
//
// The job's run context is detached from ctx so that the HTTP request (or
// CLI invocation) that started the job does not tear it down.
func (s *ScreeningService) StartJob(ctx context.Context, scriptID string, rowLimit *int) (*model.Job, error) {
	if scriptID == "" {
		return nil, errors.New("scriptID is required")
	}
	if rowLimit != nil && *rowLimit < 1 {
		return nil, fmt.Errorf("rowLimit must be positive, got %d", *rowLimit)
	}

	job := model.NewJob(scriptID, rowLimit)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	runCtx, cancelRun := context.WithCancel(context.WithoutCancel(ctx))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancelRun()
		return nil, ErrServiceClosed
	}
	s.running[job.ID] = cancelRun
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("screening job started",
		"job_id", job.ID,
		"script_id", scriptID)

	go s.runJob(runCtx, job)

	return job, nil
}

func (s *ScreeningService) runJob(ctx context.Context, job *model.Job) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if cancelRun, ok := s.running[job.ID]; ok {
			cancelRun()
			delete(s.running, job.ID)
		}
		s.mu.Unlock()
	}()

	if err := s.runner.Run(ctx, job); err != nil {
		s.logger.Error("screening job failed",
			"job_id", job.ID,
			"script_id", job.ScriptID,
			"error", err)
		return
	}

	s.logger.Info("screening job finished",
		"job_id", job.ID,
		"status", string(job.Status),
		"rows_processed", job.RowsProcessed)
}

// Cancel requests cooperative cancellation of a running job. The
// orchestrator honors the flag at the next batch boundary; records already
// processed are kept unless the engine is configured to discard them.
//
// Cancelling a job that is already terminal returns an error; cancelling an
// unknown job returns model.ErrJobNotFound.
func (s *ScreeningService) Cancel(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}

	if err := s.cancel.RequestCancel(ctx, jobID); err != nil {
		return fmt.Errorf("request cancel: %w", err)
	}

	s.logger.Info("screening job cancellation requested", "job_id", jobID)
	return nil
}

// Status returns the persisted job row together with the most recent
// progress snapshot, when a snapshot store is configured. A snapshot read
// failure is logged and degraded to a nil snapshot rather than failing the
// status call.
func (s *ScreeningService) Status(ctx context.Context, jobID string) (*JobStatusView, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	view := &JobStatusView{Job: job}
	if s.snapshots == nil {
		return view, nil
	}

	snapshot, err := s.snapshots.LatestSnapshot(ctx, jobID)
	if err != nil {
		s.logger.Warn("progress snapshot read failed",
			"job_id", jobID,
			"error", err)
		return view, nil
	}
	view.Progress = snapshot
	return view, nil
}

// RunningJobs returns the IDs of jobs currently executing in this process.
func (s *ScreeningService) RunningJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops accepting new jobs, cancels the run contexts of all
// in-flight jobs, and waits for them to drain or for ctx to expire.
func (s *ScreeningService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for _, cancelRun := range s.running {
		cancelRun()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown wait: %w", ctx.Err())
	}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
