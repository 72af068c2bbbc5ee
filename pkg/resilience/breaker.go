// Package resilience guards calls to a dependency that may be down, so a
// failing upstream is not hammered by every page view.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/WessleyAI/wessley-catalog/pkg/fn"
)

// Circuit breaker states.
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // rejecting calls
	StateHalfOpen              // letting probe calls through
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerOpts configures the circuit breaker.
type BreakerOpts struct {
	// FailThreshold is how many consecutive failures trip the breaker.
	FailThreshold int
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// HalfOpenMax is the number of probe calls allowed while half-open.
	HalfOpenMax int
	// IsFailure decides which errors count against the threshold. Nil counts
	// every error.
	IsFailure func(error) bool
	// OnStateChange, if set, is called after each transition outside the lock.
	OnStateChange func(from, to State)
}

var DefaultBreakerOpts = BreakerOpts{
	FailThreshold: 5,
	Timeout:       30 * time.Second,
	HalfOpenMax:   1,
}

// Breaker implements a circuit breaker with closed/open/half-open states.
type Breaker struct {
	mu            sync.Mutex
	opts          BreakerOpts
	state         State
	failures      int
	openedAt      time.Time
	halfOpenCount int
	now           func() time.Time // for testing
}

// NewBreaker creates a circuit breaker; zero options take the defaults.
func NewBreaker(opts BreakerOpts) *Breaker {
	if opts.FailThreshold <= 0 {
		opts.FailThreshold = DefaultBreakerOpts.FailThreshold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBreakerOpts.Timeout
	}
	if opts.HalfOpenMax <= 0 {
		opts.HalfOpenMax = DefaultBreakerOpts.HalfOpenMax
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	st, changed := b.advance()
	b.mu.Unlock()
	b.notify(changed)
	return st
}

type transition struct{ from, to State }

// advance moves open to half-open once the timeout elapsed. Must hold mu.
func (b *Breaker) advance() (State, *transition) {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Timeout {
		return StateHalfOpen, b.set(StateHalfOpen)
	}
	return b.state, nil
}

// set changes state and reports the transition. Must hold mu.
func (b *Breaker) set(to State) *transition {
	from := b.state
	b.state = to
	b.failures = 0
	b.halfOpenCount = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	if from == to {
		return nil
	}
	return &transition{from, to}
}

func (b *Breaker) notify(t *transition) {
	if t != nil && b.opts.OnStateChange != nil {
		b.opts.OnStateChange(t.from, t.to)
	}
}

// acquire admits a call or returns ErrCircuitOpen.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	st, changed := b.advance()
	var err error
	switch st {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenCount >= b.opts.HalfOpenMax {
			err = ErrCircuitOpen
		} else {
			b.halfOpenCount++
		}
	}
	b.mu.Unlock()
	b.notify(changed)
	return err
}

// record books the outcome of an admitted call.
func (b *Breaker) record(err error) {
	failed := err != nil && (b.opts.IsFailure == nil || b.opts.IsFailure(err))

	b.mu.Lock()
	var changed *transition
	switch {
	case failed:
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.FailThreshold {
			changed = b.set(StateOpen)
		}
	case b.state == StateHalfOpen:
		changed = b.set(StateClosed)
	default:
		b.failures = 0
	}
	b.mu.Unlock()
	b.notify(changed)
}

// Call executes f through the breaker.
func Call[T any](b *Breaker, ctx context.Context, f func(context.Context) fn.Result[T]) fn.Result[T] {
	if err := b.acquire(); err != nil {
		return fn.Err[T](err)
	}
	r := f(ctx)
	b.record(r.Error())
	return r
}
