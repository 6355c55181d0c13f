package config

import "time"

// PoolConfig contains per-stage worker pool sizing knobs.
type PoolConfig struct {
	// MinWorkers is the lower bound on concurrent workers for the stage.
	MinWorkers int `env:"MIN_WORKERS" envDefault:"2"`

	// MaxWorkers is the upper bound on concurrent workers for the stage.
	MaxWorkers int `env:"MAX_WORKERS" envDefault:"16"`

	// WorkersPerBatch scales worker count with the number of reference-sized
	// batches in the stage workload.
	WorkersPerBatch float64 `env:"WORKERS_PER_BATCH" envDefault:"1.5"`

	// BatchSize is the reference batch size used by the sizing formula.
	BatchSize int `env:"BATCH_SIZE" envDefault:"250"`
}

// Sanitize applies guardrails to pool configuration values.
func (p *PoolConfig) Sanitize() {
	if p.MinWorkers < 1 {
		p.MinWorkers = 1
	}
	if p.MaxWorkers < p.MinWorkers {
		p.MaxWorkers = p.MinWorkers
	}
	if p.WorkersPerBatch <= 0 {
		p.WorkersPerBatch = 1
	}
	if p.BatchSize < 1 {
		p.BatchSize = 1
	}
}

// RetryConfig contains per-service retry tuning.
type RetryConfig struct {
	// MaxAttempts is the total number of call attempts, including the first.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"4"`

	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration `env:"BASE_DELAY" envDefault:"250ms"`

	// MaxDelay caps the exponential backoff delay.
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"10s"`

	// JitterFraction is the +/- fraction applied uniformly to each delay.
	JitterFraction float64 `env:"JITTER_FRACTION" envDefault:"0.2"`
}

// Sanitize applies guardrails to retry configuration values.
func (r *RetryConfig) Sanitize() {
	if r.MaxAttempts < 1 {
		r.MaxAttempts = 1
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = 100 * time.Millisecond
	}
	if r.MaxDelay < r.BaseDelay {
		r.MaxDelay = r.BaseDelay
	}
	if r.JitterFraction < 0 {
		r.JitterFraction = 0
	}
	if r.JitterFraction > 1 {
		r.JitterFraction = 1
	}
}

// BreakerConfig contains per-service circuit breaker tuning.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int `env:"FAILURE_THRESHOLD" envDefault:"5"`

	// CoolDown is how long an open breaker rejects calls before allowing a
	// half-open trial.
	CoolDown time.Duration `env:"COOL_DOWN" envDefault:"30s"`
}

// Sanitize applies guardrails to breaker configuration values.
func (b *BreakerConfig) Sanitize() {
	if b.FailureThreshold < 1 {
		b.FailureThreshold = 1
	}
	if b.CoolDown < time.Second {
		b.CoolDown = time.Second
	}
}

// EngineConfig contains batch engine configuration.
type EngineConfig struct {
	// BatchSize is the number of candidate rows pulled into each batch.
	BatchSize int `env:"ENGINE_BATCH_SIZE" envDefault:"250"`

	// CandidateTable is the warehouse table or view holding candidate leads.
	CandidateTable string `env:"ENGINE_CANDIDATE_TABLE" envDefault:"leads"`

	// ProcessedCacheTable is the warehouse table holding already-processed keys.
	ProcessedCacheTable string `env:"ENGINE_PROCESSED_CACHE_TABLE" envDefault:"processed_leads"`

	// JoinKey is the candidate column used to anti-join against the processed cache.
	JoinKey string `env:"ENGINE_JOIN_KEY" envDefault:"address_norm"`

	// DiscardOnCancel skips the partial upload when a job is cancelled.
	DiscardOnCancel bool `env:"ENGINE_DISCARD_ON_CANCEL" envDefault:"false"`

	// Worker pool sizing, per stage.
	EnrichmentPool PoolConfig `envPrefix:"ENGINE_ENRICH_"`
	CompliancePool PoolConfig `envPrefix:"ENGINE_COMPLIANCE_"`

	// Retry policies, per service.
	EnrichmentRetry RetryConfig `envPrefix:"ENGINE_ENRICH_RETRY_"`
	ComplianceRetry RetryConfig `envPrefix:"ENGINE_COMPLIANCE_RETRY_"`

	// Breaker tuning, per service.
	EnrichmentBreaker BreakerConfig `envPrefix:"ENGINE_ENRICH_BREAKER_"`
	ComplianceBreaker BreakerConfig `envPrefix:"ENGINE_COMPLIANCE_BREAKER_"`
}

// Sanitize applies guardrails to engine configuration values.
func (e *EngineConfig) Sanitize() {
	if e.BatchSize < 1 {
		e.BatchSize = 1
	}
	if e.BatchSize > 10000 {
		e.BatchSize = 10000
	}
	e.EnrichmentPool.Sanitize()
	e.CompliancePool.Sanitize()
	e.EnrichmentRetry.Sanitize()
	e.ComplianceRetry.Sanitize()
	e.EnrichmentBreaker.Sanitize()
	e.ComplianceBreaker.Sanitize()
}
