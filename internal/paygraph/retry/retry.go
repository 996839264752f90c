// Package retry re-runs sink writes that fail for transient reasons.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

type Class int

const (
	Retryable Class = iota
	Fatal
)

// Policy is copied by value into every sink wrapper; the zero value means one
// attempt with the package defaults for delays.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration // wait after the first failure, doubled per attempt
	MaxDelay    time.Duration // cap on the doubled wait, before jitter
	Jitter      time.Duration // uniform extra wait in [0, Jitter)

	// Classify overrides the default, under which only Permanent errors are Fatal.
	Classify func(error) Class

	// OnRetry runs before each wait, e.g. to log the failed attempt.
	OnRetry func(attempt int, wait time.Duration, err error)
}

const (
	defaultBaseDelay = 100 * time.Millisecond
	defaultMaxDelay  = 5 * time.Second
)

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Classify == nil {
		p.Classify = classify
	}
	return p
}

// Backoff is the wait after the given failed attempt (1-based), without jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	wait := p.BaseDelay
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(wait, p.MaxDelay)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do gives up at once, e.g. a full disk or a
// record type the sink cannot store.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func classify(err error) Class {
	if IsPermanent(err) {
		return Fatal
	}
	return Retryable
}

// Do calls fn until it returns nil, a Fatal error, or MaxAttempts is reached,
// and returns the last error. A done ctx ends the loop with ctx.Err().
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	p = p.withDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts || p.Classify(err) == Fatal {
			return err
		}

		wait := p.Backoff(attempt)
		if p.Jitter > 0 {
			wait += time.Duration(rand.Int63n(int64(p.Jitter)))
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
