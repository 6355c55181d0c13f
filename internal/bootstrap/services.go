package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadforge/leadscreen/config"
	"github.com/leadforge/leadscreen/internal/domain/model"
	"github.com/leadforge/leadscreen/internal/engine"
	"github.com/leadforge/leadscreen/internal/service"
)

// ServiceDeps carries everything needed to assemble the screening service.
type ServiceDeps struct {
	Config   *config.AppConfig
	Adapters *Adapters
	Logger   *slog.Logger
}

// BuildScreeningService assembles the job control surface on top of the
// engine and adapters.
func BuildScreeningService(deps ServiceDeps) (*service.ScreeningService, error) {
	runner := &jobRunner{
		cfg:      deps.Config,
		adapters: deps.Adapters,
		logger:   deps.Logger,
		executor: buildExecutor(deps),
	}

	svc, err := service.NewScreeningService(service.ScreeningServiceOptions{
		Jobs:      deps.Adapters.Jobs,
		Runner:    runner,
		Cancel:    deps.Adapters.Bus,
		Snapshots: deps.Adapters.Bus,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build screening service: %w", err)
	}
	return svc, nil
}

// jobRunner builds a fresh orchestrator per job. The accumulator buffers a
// whole job's records and latches after upload, so orchestrator state cannot
// be shared across runs.
type jobRunner struct {
	cfg      *config.AppConfig
	adapters *Adapters
	logger   *slog.Logger
	executor *engine.Executor
}

var _ service.JobRunner = (*jobRunner)(nil)

func (r *jobRunner) Run(ctx context.Context, job *model.Job) error {
	eng := r.cfg.Engine
	a := r.adapters

	orchestrator, err := engine.NewOrchestrator(engine.OrchestratorOptions{
		Jobs:       a.Jobs,
		Source:     a.Source,
		Enrichment: a.Enrichment,
		Compliance: a.Compliance,
		DNC:        a.Lookup,
		Cancel:     a.Bus,
		Executor:   r.executor,
		Reporter: engine.NewProgressReporter(engine.ProgressReporterOptions{
			Bus:    a.Bus,
			Logger: r.logger,
		}),
		Accumulator: engine.NewAccumulator(engine.AccumulatorOptions{
			Sink:            a.Sink,
			Logger:          r.logger,
			DiscardOnCancel: eng.DiscardOnCancel,
		}),
		Logger:         r.logger,
		Metrics:        a.Metrics,
		BatchSize:      eng.BatchSize,
		EnrichmentPool: poolConfig(eng.EnrichmentPool),
		CompliancePool: poolConfig(eng.CompliancePool),
	})
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	return orchestrator.Run(ctx, job)
}

// buildExecutor translates retry/breaker configuration into the executor's
// per-service policies. One executor is shared by all jobs so breaker state
// survives across runs.
func buildExecutor(deps ServiceDeps) *engine.Executor {
	eng := deps.Config.Engine
	return engine.NewExecutor(engine.ExecutorOptions{
		Policies: map[string]engine.ServicePolicy{
			engine.ServiceEnrichment: {
				Retry:   retryPolicy(eng.EnrichmentRetry),
				Breaker: breakerPolicy(eng.EnrichmentBreaker),
			},
			engine.ServiceCompliance: {
				Retry:   retryPolicy(eng.ComplianceRetry),
				Breaker: breakerPolicy(eng.ComplianceBreaker),
			},
		},
		Logger:  deps.Logger,
		Metrics: deps.Adapters.Metrics,
	})
}

func retryPolicy(cfg config.RetryConfig) engine.RetryPolicy {
	return engine.RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		BaseDelay:      cfg.BaseDelay,
		MaxDelay:       cfg.MaxDelay,
		JitterFraction: cfg.JitterFraction,
	}
}

func breakerPolicy(cfg config.BreakerConfig) engine.BreakerPolicy {
	return engine.BreakerPolicy{
		FailureThreshold: cfg.FailureThreshold,
		CoolDown:         cfg.CoolDown,
	}
}

func poolConfig(cfg config.PoolConfig) engine.WorkerPoolConfig {
	return engine.WorkerPoolConfig{
		MinWorkers:      cfg.MinWorkers,
		MaxWorkers:      cfg.MaxWorkers,
		WorkersPerBatch: cfg.WorkersPerBatch,
		BatchSize:       cfg.BatchSize,
	}
}
