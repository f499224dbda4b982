package fetch

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy retries an operation on ErrNetwork with a randomized backoff.
// Parse and blocked failures pass through untouched.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryPolicy performs exactly one retry after a short randomized
// backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   500 * time.Millisecond,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget is exhausted. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if waitErr := sleepCtx(ctx, p.backoff()); waitErr != nil {
				return waitErr
			}
		}
		err = op()
		if err == nil || !errors.Is(err, ErrNetwork) {
			return err
		}
	}
	return err
}

func (p RetryPolicy) backoff() time.Duration {
	d := p.BaseDelay
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return d
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
