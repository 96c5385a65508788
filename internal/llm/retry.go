package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// #region constants

const (
	// PaceDelay is waited before every call, success or not, to respect
	// the endpoint's shared rate-limit budget.
	PaceDelay = 1 * time.Second

	// MaxAttempts bounds total invocations per Do call.
	MaxAttempts = 5

	// RateLimitFloor is the minimum wait after a 429, regardless of hint.
	RateLimitFloor = 5 * time.Second

	// TransientWait is the fixed wait after a timeout or network error.
	TransientWait = 2 * time.Second
)

// #endregion constants

// #region retryer

// Retryer executes completion calls with pacing and classified retries.
// Holds no state across calls.
type Retryer struct {
	MaxAttempts int
	Pace        time.Duration
	Floor       time.Duration
	Transient   time.Duration

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer returns a Retryer with the package defaults.
func NewRetryer() *Retryer {
	return &Retryer{
		MaxAttempts: MaxAttempts,
		Pace:        PaceDelay,
		Floor:       RateLimitFloor,
		Transient:   TransientWait,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// #endregion retryer

// #region do

// Do runs fn with the fixed pre-call pacing delay, retrying rate-limit,
// timeout, and network failures up to MaxAttempts. Non-retryable errors
// propagate immediately; exhausting attempts returns the last error.
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if err := r.sleep(ctx, r.Pace); err != nil {
			return "", err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !Retryable(err) {
			return "", err
		}
		lastErr = err

		if attempt == r.MaxAttempts {
			break
		}

		wait := r.backoff(err)
		log.Printf("[LLM] attempt %d/%d failed (%v), waiting %s", attempt, r.MaxAttempts, err, wait)
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// backoff computes the post-failure wait: the endpoint's hint (floored)
// for rate limits, a fixed wait for transient transport errors.
func (r *Retryer) backoff(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		wait := rl.RetryAfter
		if wait < r.Floor {
			wait = r.Floor
		}
		return wait
	}
	return r.Transient
}

// #endregion do
