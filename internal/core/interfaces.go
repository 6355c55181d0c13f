package core

import (
	"context"

	"github.com/leadforge/leadscreen/internal/domain/model"
)

// This file contains collaborator interface definitions (ports in hexagonal
// architecture). The engine depends on these interfaces, never on concrete
// implementations; the web layer, warehouse, providers, and stores all plug
// in behind them.

// FetchCandidatesParams groups parameters for CandidateSource.FetchCandidates
// to keep param count ≤3.
type FetchCandidatesParams struct {
	// ScriptID identifies the source script/filter descriptor.
	ScriptID string
	// Offset and Limit page through the pre-filtered candidate set.
	Offset int
	Limit  int
}

// CandidateSource defines the interface to the warehouse holding candidate
// leads. Implementations must push the "not already processed" predicate
// into the query rather than filtering client-side.
type CandidateSource interface {
	// CountCandidates returns the number of unprocessed candidate rows,
	// before any job row limit is applied.
	CountCandidates(ctx context.Context, scriptID string) (int, error)
	// FetchCandidates returns one page of unprocessed candidate rows.
	FetchCandidates(ctx context.Context, params FetchCandidatesParams) ([]*model.Record, error)
}

// EnrichmentClient defines the interface to the contact enrichment provider.
type EnrichmentClient interface {
	// Enrich annotates the record in place with candidate phones and emails.
	Enrich(ctx context.Context, record *model.Record) error
}

// ComplianceClient defines the interface to the litigator screening provider.
type ComplianceClient interface {
	// ScreenLitigators returns the subset of the given phone numbers whose
	// owners appear on the litigation list. Implementations must respect
	// MaxBatchSize per outbound request.
	ScreenLitigators(ctx context.Context, phones []string) (map[string]bool, error)
	// MaxBatchSize is the provider's cap on phone numbers per request.
	MaxBatchSize() int
}

// DNCLookup defines the interface to the local do-not-call lookup store.
type DNCLookup interface {
	// MatchedKeys returns the subset of keys present in the DNC store.
	MatchedKeys(ctx context.Context, keys []string) (map[string]struct{}, error)
}

// ResultSink accepts the single bulk write of a job's final record set.
type ResultSink interface {
	BulkInsert(ctx context.Context, jobID string, records []*model.Record) (int, error)
}

// EventBus accepts progress snapshots for delivery to observers. Delivery is
// fire-and-forget; implementations must not apply back-pressure to the engine.
type EventBus interface {
	PublishProgress(ctx context.Context, snapshot *model.ProgressSnapshot) error
}

// JobStore defines the interface for job row persistence.
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// Update persists the job's status, counters, tallies, and timestamps.
	Update(ctx context.Context, job *model.Job) error
}

// CancelFlag exposes the cooperative cancellation signal for a job. The
// orchestrator consults it at batch boundaries only.
type CancelFlag interface {
	// RequestCancel sets the cancellation flag for a job.
	RequestCancel(ctx context.Context, jobID string) error
	// IsCancelRequested reads the cancellation flag for a job.
	IsCancelRequested(ctx context.Context, jobID string) (bool, error)
}
