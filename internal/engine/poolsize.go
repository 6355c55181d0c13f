// Package engine implements the adaptive concurrent batch-processing core:
// worker pool sizing, resilient outbound calls, the job orchestrator, result
// accumulation, and progress reporting.
package engine

import "math"

// WorkerPoolConfig holds per-service worker pool sizing knobs. It is
// read-only configuration, loaded once per job.
type WorkerPoolConfig struct {
	// MinWorkers is the lower bound on concurrent workers.
	MinWorkers int
	// MaxWorkers is the upper bound on concurrent workers.
	MaxWorkers int
	// WorkersPerBatch scales worker count with the number of
	// reference-sized batches in the workload.
	WorkersPerBatch float64
	// BatchSize is the reference batch size.
	BatchSize int
}

// PoolSize returns the worker count for a stage processing workload records:
// ceil(workload/batch_size) * workers_per_batch, rounded up, clamped to
// [MinWorkers, MaxWorkers]. It is deterministic and side-effect free.
//
// A zero workload returns MinWorkers; callers skip dispatch entirely in that
// case. Intermediate results round up before clamping so small workloads
// never compute zero workers.
func PoolSize(workload int, cfg WorkerPoolConfig) int {
	if workload <= 0 {
		return cfg.MinWorkers
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	batches := math.Ceil(float64(workload) / float64(batchSize))
	workers := int(math.Ceil(batches * cfg.WorkersPerBatch))

	if workers < cfg.MinWorkers {
		return cfg.MinWorkers
	}
	if workers > cfg.MaxWorkers {
		return cfg.MaxWorkers
	}
	return workers
}
