package httputil

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/nutrilabel/pkg/errors"
)

// maxRetryWait caps both the doubled backoff and a server's Retry-After.
const maxRetryWait = 30 * time.Second

// RetryableError marks a transient failure (transport error, 5xx) that
// [Retry] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. [RetryableError] failures back off
// exponentially from delay; rate-limited responses wait for their
// Retry-After when it is set. Any other error is returned at once.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		wait, ok := retryWait(err, delay)
		if !ok || i == attempts-1 {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, maxRetryWait)
	}
	return err
}

// retryWait reports whether err may be retried and how long to wait first.
func retryWait(err error, delay time.Duration) (time.Duration, bool) {
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			return min(time.Duration(rl.RetryAfter)*time.Second, maxRetryWait), true
		}
		return delay, true
	}
	if errors.As(err, new(*RetryableError)) {
		return delay, true
	}
	return 0, false
}
