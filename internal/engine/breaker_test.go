package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock implements Clock with settable time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock Clock, observer BreakerObserver) *Breaker {
	return NewBreaker(BreakerOptions{
		Service:          "compliance",
		FailureThreshold: 5,
		CoolDown:         30 * time.Second,
		Clock:            clock,
		Observer:         observer,
	})
}

func TestBreakerOpensAfterThresholdFailures(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Allow())
		b.RecordFailure()
		assert.Equal(t, BreakerClosed, b.State(), "still closed after %d failures", i+1)
	}

	require.NoError(t, b.Allow())
	b.RecordFailure() // 5th consecutive failure
	assert.Equal(t, BreakerOpen, b.State())
	assert.Equal(t, clock.Now(), b.OpenedAt())

	// 6th call short-circuits without a network attempt.
	err := b.Allow()
	var openErr *ErrCircuitOpen
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "compliance", openErr.Service)
	assert.Greater(t, openErr.RetryIn, time.Duration(0))
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(newFakeClock(), nil)

	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()
	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}

	assert.Equal(t, BreakerClosed, b.State(), "non-consecutive failures never open the breaker")
}

func TestBreakerHalfOpenTrialAfterCoolDown(t *testing.T) {
	clock := newFakeClock()
	var transitions []string
	observer := func(_ string, from, to BreakerState) {
		transitions = append(transitions, string(from)+">"+string(to))
	}
	b := newTestBreaker(clock, observer)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	require.Equal(t, BreakerOpen, b.State())

	// Inside cool-down: rejected.
	clock.Advance(29 * time.Second)
	assert.Error(t, b.Allow())

	// Cool-down elapsed: exactly one half-open trial admitted.
	clock.Advance(2 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())

	// A second caller during the trial is rejected.
	assert.Error(t, b.Allow())

	// Trial success closes the breaker.
	b.RecordSuccess()
	assert.Equal(t, BreakerClosed, b.State())
	assert.NoError(t, b.Allow())

	assert.Equal(t, []string{"closed>open", "open>half_open", "half_open>closed"}, transitions)
}

func TestBreakerHalfOpenTrialFailureReopensAndResetsClock(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, nil)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	openedAt := b.OpenedAt()

	clock.Advance(31 * time.Second)
	require.NoError(t, b.Allow())
	require.Equal(t, BreakerHalfOpen, b.State())

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.True(t, b.OpenedAt().After(openedAt), "cool-down clock reset on trial failure")

	// Full cool-down required again from the reopen.
	clock.Advance(29 * time.Second)
	assert.Error(t, b.Allow())
	clock.Advance(2 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestBreakerConcurrentAllowAdmitsSingleTrial(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, nil)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.Advance(31 * time.Second)

	var admitted int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Allow() == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), admitted, "exactly one half-open trial")
}
