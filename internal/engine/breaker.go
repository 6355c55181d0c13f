package engine

import (
	"fmt"
	"sync"
	"time"
)

// Clock provides the current time; injectable so breaker and progress math
// are testable with a fixed clock.
type Clock interface {
	Now() time.Time
}

// systemClock implements Clock with real system time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// BreakerState is the circuit breaker state.
type BreakerState string

const (
	// BreakerClosed allows calls through normally.
	BreakerClosed BreakerState = "closed"
	// BreakerOpen rejects calls until the cool-down elapses.
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen allows exactly one trial call after the cool-down.
	BreakerHalfOpen BreakerState = "half_open"
)

// ErrCircuitOpen is returned when a call is rejected because the service's
// breaker is open and the cool-down has not elapsed. No network call is
// attempted.
type ErrCircuitOpen struct {
	Service  string
	RetryIn  time.Duration
	OpenedAt time.Time
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit open for %s, retry in %s", e.Service, e.RetryIn.Round(time.Millisecond))
}

// BreakerObserver is notified on breaker state transitions, for monitoring.
// Callbacks run under the breaker lock and must be cheap.
type BreakerObserver func(service string, from, to BreakerState)

// Breaker is a per-service circuit breaker. It is shared across all workers
// calling that service; the read-check-then-maybe-write on Allow is atomic
// so two workers never both decide to half-open simultaneously.
type Breaker struct {
	service   string
	threshold int
	coolDown  time.Duration
	clock     Clock
	observer  BreakerObserver

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool // a half-open trial is in flight
}

// BreakerOptions configures a Breaker.
type BreakerOptions struct {
	Service          string
	FailureThreshold int
	CoolDown         time.Duration
	Clock            Clock
	Observer         BreakerObserver
}

// NewBreaker creates a closed breaker for one service.
func NewBreaker(opts BreakerOptions) *Breaker {
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	threshold := opts.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}
	coolDown := opts.CoolDown
	if coolDown <= 0 {
		coolDown = 30 * time.Second
	}
	return &Breaker{
		service:   opts.Service,
		threshold: threshold,
		coolDown:  coolDown,
		clock:     clock,
		observer:  opts.Observer,
		state:     BreakerClosed,
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// OpenedAt returns when the breaker last opened (zero if never).
func (b *Breaker) OpenedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openedAt
}

// Allow decides whether a call may proceed. When the breaker is open and the
// cool-down has elapsed it transitions to half-open and admits exactly one
// trial call; concurrent callers during the trial are rejected.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		now := b.clock.Now()
		remaining := b.openedAt.Add(b.coolDown).Sub(now)
		if remaining > 0 {
			return &ErrCircuitOpen{Service: b.service, RetryIn: remaining, OpenedAt: b.openedAt}
		}
		b.transition(BreakerHalfOpen)
		b.probing = true
		return nil
	case BreakerHalfOpen:
		if b.probing {
			return &ErrCircuitOpen{Service: b.service, OpenedAt: b.openedAt}
		}
		b.probing = true
		return nil
	}
	return nil
}

// RecordSuccess resets the consecutive-failure counter and closes a
// half-open breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	if b.state == BreakerHalfOpen {
		b.transition(BreakerClosed)
	}
}

// RecordFailure increments the consecutive-failure counter. Reaching the
// threshold opens the breaker; a half-open trial failure reopens it
// immediately and resets the cool-down clock.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.probing = false
		b.openedAt = b.clock.Now()
		b.transition(BreakerOpen)
		return
	}

	b.failures++
	if b.state == BreakerClosed && b.failures >= b.threshold {
		b.openedAt = b.clock.Now()
		b.transition(BreakerOpen)
	}
}

// transition changes state and notifies the observer. Caller holds b.mu.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.observer != nil {
		b.observer(b.service, from, to)
	}
}
