package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/WessleyAI/wessley-catalog/pkg/fn"
)

var errFail = errors.New("fail")

func failing(context.Context) fn.Result[int] { return fn.Err[int](errFail) }
func succeeding(context.Context) fn.Result[int] { return fn.Ok(1) }

func TestBreakerStartsClosed(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		Call(b, ctx, failing)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	called := false
	r := Call(b, ctx, func(context.Context) fn.Result[int] {
		called = true
		return fn.Ok(1)
	})
	if !errors.Is(r.Error(), ErrCircuitOpen) || called {
		t.Fatalf("expected rejection without calling through, got %v called=%v", r.Error(), called)
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	ctx := context.Background()

	Call(b, ctx, failing)
	Call(b, ctx, failing)
	Call(b, ctx, succeeding)
	Call(b, ctx, failing)
	Call(b, ctx, failing)
	if b.State() != StateClosed {
		t.Fatalf("a success should reset the count, got %v", b.State())
	}
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	notFound := errors.New("not found")
	b := NewBreaker(BreakerOpts{
		FailThreshold: 1,
		IsFailure:     func(err error) bool { return !errors.Is(err, notFound) },
	})
	r := Call(b, context.Background(), func(context.Context) fn.Result[int] { return fn.Err[int](notFound) })
	if !errors.Is(r.Error(), notFound) {
		t.Fatalf("the call's own error should be returned, got %v", r.Error())
	}
	if b.State() != StateClosed {
		t.Fatalf("ignored errors must not trip, got %v", b.State())
	}
}

func TestBreakerHalfOpen(t *testing.T) {
	now := time.Now()
	var transitions []string
	b := NewBreaker(BreakerOpts{
		FailThreshold: 2,
		Timeout:       5 * time.Second,
		HalfOpenMax:   1,
		OnStateChange: func(from, to State) { transitions = append(transitions, from.String()+">"+to.String()) },
	})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	Call(b, ctx, failing)
	Call(b, ctx, failing)
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	now = now.Add(6 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %v", b.State())
	}

	Call(b, ctx, succeeding)
	if b.State() != StateClosed {
		t.Fatalf("expected closed after a good probe, got %v", b.State())
	}

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	Call(b, ctx, failing)
	now = now.Add(2 * time.Second)
	Call(b, ctx, failing)
	if b.State() != StateOpen {
		t.Fatalf("a failed probe should reopen, got %v", b.State())
	}
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second, HalfOpenMax: 1})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	Call(b, ctx, failing)
	now = now.Add(2 * time.Second)

	release := make(chan struct{})
	done := make(chan fn.Result[int])
	go func() {
		done <- Call(b, ctx, func(context.Context) fn.Result[int] {
			<-release
			return fn.Ok(1)
		})
	}()
	// wait until the probe is admitted
	for {
		b.mu.Lock()
		admitted := b.halfOpenCount == 1
		b.mu.Unlock()
		if admitted {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if r := Call(b, ctx, succeeding); !errors.Is(r.Error(), ErrCircuitOpen) {
		t.Fatalf("a second probe should be rejected, got %v", r.Error())
	}
	close(release)
	if r := <-done; r.IsErr() {
		t.Fatal(r.Error())
	}
}
