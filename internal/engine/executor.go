package engine

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	apperrors "github.com/leadforge/leadscreen/internal/errors"
	"github.com/leadforge/leadscreen/internal/observability/statsd"
)

// RetryPolicy holds per-service retry tuning. Read-only.
type RetryPolicy struct {
	// MaxAttempts is the total number of call attempts, including the first.
	MaxAttempts int
	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff delay.
	MaxDelay time.Duration
	// JitterFraction is the +/- fraction applied uniformly to each delay.
	JitterFraction float64
}

// BreakerPolicy holds per-service breaker tuning. Read-only.
type BreakerPolicy struct {
	FailureThreshold int
	CoolDown         time.Duration
}

// ServicePolicy bundles the retry and breaker tuning for one service.
type ServicePolicy struct {
	Retry   RetryPolicy
	Breaker BreakerPolicy
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// Policies maps service name to its retry/breaker tuning. Services
	// without an entry get DefaultPolicy.
	Policies map[string]ServicePolicy

	// DefaultPolicy applies to services without an explicit policy.
	DefaultPolicy ServicePolicy

	Logger  *slog.Logger
	Metrics statsd.Sink
	Clock   Clock

	// Rand supplies jitter; defaults to a time-seeded source. Tests inject a
	// deterministic one.
	Rand *rand.Rand
}

// Executor wraps outbound calls with exponential backoff retry and a
// per-service circuit breaker. One Executor is shared by all workers in a
// job; breaker state is the only synchronized mutation.
type Executor struct {
	policies      map[string]ServicePolicy
	defaultPolicy ServicePolicy
	logger        *slog.Logger
	metrics       statsd.Sink
	clock         Clock

	randMu sync.Mutex
	rand   *rand.Rand

	breakerMu sync.Mutex
	breakers  map[string]*Breaker
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ExecutorOptions) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // jitter does not need crypto randomness
	}
	defaultPolicy := opts.DefaultPolicy
	if defaultPolicy.Retry.MaxAttempts < 1 {
		defaultPolicy.Retry.MaxAttempts = 1
	}

	return &Executor{
		policies:      opts.Policies,
		defaultPolicy: defaultPolicy,
		logger:        logger,
		metrics:       opts.Metrics,
		clock:         clock,
		rand:          rng,
		breakers:      make(map[string]*Breaker),
	}
}

// Operation is one outbound call attempt.
type Operation func(ctx context.Context) error

// Do executes op against the named service with retry and circuit breaking.
//
// Before each attempt the service's breaker is consulted: an open breaker
// inside its cool-down fails immediately with *ErrCircuitOpen and no network
// call is attempted. Failed attempts back off exponentially with uniform
// jitter; retrying stops once attempts are exhausted, the error is not
// retryable, or the breaker opens.
func (e *Executor) Do(ctx context.Context, service string, op Operation) error {
	policy := e.policyFor(service)
	breaker := e.breakerFor(service)

	var lastErr error
	for attempt := 0; attempt < policy.Retry.MaxAttempts; attempt++ {
		if err := breaker.Allow(); err != nil {
			e.count("engine.call.short_circuited", service)
			return &apperrors.AppError{
				Code:    apperrors.ErrCodeCircuitOpen,
				Message: "call short-circuited",
				Cause:   err,
			}
		}

		err := op(ctx)
		if err == nil {
			breaker.RecordSuccess()
			return nil
		}

		breaker.RecordFailure()
		lastErr = err
		e.count("engine.call.failure", service)

		if !apperrors.IsRetryable(err) {
			e.logger.WarnContext(ctx, "call failed with non-retryable error",
				"service", service,
				"attempt", attempt+1,
				"error", err)
			return err
		}
		if attempt == policy.Retry.MaxAttempts-1 {
			break
		}

		delay := e.backoffDelay(policy.Retry, attempt)
		e.logger.DebugContext(ctx, "retrying call",
			"service", service,
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	e.logger.WarnContext(ctx, "call failed after exhausting retries",
		"service", service,
		"attempts", policy.Retry.MaxAttempts,
		"error", lastErr)
	e.count("engine.call.exhausted", service)
	return lastErr
}

// BreakerState returns the named service's breaker state, for monitoring.
func (e *Executor) BreakerState(service string) BreakerState {
	return e.breakerFor(service).State()
}

// backoffDelay computes min(base * 2^attempt, max) * (1 ± jitter), jitter
// drawn uniformly.
func (e *Executor) backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	base := float64(policy.BaseDelay) * math.Pow(2, float64(attempt))
	if ceiling := float64(policy.MaxDelay); policy.MaxDelay > 0 && base > ceiling {
		base = ceiling
	}

	if policy.JitterFraction > 0 {
		e.randMu.Lock()
		// uniform in [-jitter, +jitter]
		factor := 1 + policy.JitterFraction*(2*e.rand.Float64()-1)
		e.randMu.Unlock()
		base *= factor
	}

	if base < 0 {
		base = 0
	}
	return time.Duration(base)
}

func (e *Executor) policyFor(service string) ServicePolicy {
	if p, ok := e.policies[service]; ok {
		if p.Retry.MaxAttempts < 1 {
			p.Retry.MaxAttempts = 1
		}
		return p
	}
	return e.defaultPolicy
}

func (e *Executor) breakerFor(service string) *Breaker {
	e.breakerMu.Lock()
	defer e.breakerMu.Unlock()

	if b, ok := e.breakers[service]; ok {
		return b
	}
	policy := e.policyFor(service)
	b := NewBreaker(BreakerOptions{
		Service:          service,
		FailureThreshold: policy.Breaker.FailureThreshold,
		CoolDown:         policy.Breaker.CoolDown,
		Clock:            e.clock,
		Observer:         e.observeTransition,
	})
	e.breakers[service] = b
	return b
}

func (e *Executor) observeTransition(service string, from, to BreakerState) {
	e.logger.Warn("breaker state changed",
		"service", service,
		"from", string(from),
		"to", string(to))
	if e.metrics != nil {
		e.metrics.Count("engine.breaker.transition", 1, map[string]string{
			"service": service,
			"to":      string(to),
		})
	}
}

func (e *Executor) count(name, service string) {
	if e.metrics != nil {
		e.metrics.Count(name, 1, map[string]string{"service": service})
	}
}
