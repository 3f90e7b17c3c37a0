package relay

import (
	"context"
	"time"
)

// Retryer decides whether a failed attempt should be retried and how
// long to wait first. A fresh Retryer is constructed for every
// top-level call via [RetryerFactory] — the same "not shared across
// calls" rule the original runtime's Retryer documents, since
// implementations are free to track attempt count as mutable state.
type Retryer interface {
	// Continue is called after an attempt failed, either in the
	// transport (err is a [RelayError] of kind ErrExecuting) or with a
	// [RetryableError] returned by the [ErrorDecoder]. It
	// returns the wait duration and true to retry, or false to give
	// up and let the error propagate. A negative or zero duration
	// means retry immediately.
	Continue(ctx context.Context, err error) (wait time.Duration, retry bool)
}

// RetryerFactory constructs a fresh [Retryer] for one top-level call.
type RetryerFactory func() Retryer

// DefaultRetryerFactory returns a [RetryerFactory] producing
// [BackoffRetryer] instances with the given limits.
func DefaultRetryerFactory(maxAttempts int, backoff, maxBackoff time.Duration) RetryerFactory {
	return func() Retryer {
		return &BackoffRetryer{
			MaxAttempts: maxAttempts,
			Backoff:     backoff,
			MaxBackoff:  maxBackoff,
		}
	}
}

// BackoffRetryer allows up to MaxAttempts attempts in total (the first
// attempt plus MaxAttempts-1 retries) with exponentially increasing
// backoff, doubling Backoff on each retry up to MaxBackoff. It is stateful — attempt is incremented on every call to
// Continue — so a new instance must be built per top-level call.
type BackoffRetryer struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration

	attempt int
}

func (r *BackoffRetryer) Continue(ctx context.Context, err error) (time.Duration, bool) {
	r.attempt++
	if r.attempt >= r.MaxAttempts {
		return 0, false
	}
	if err := ctx.Err(); err != nil {
		return 0, false
	}
	wait := r.Backoff << (r.attempt - 1)
	if r.MaxBackoff > 0 && wait > r.MaxBackoff {
		wait = r.MaxBackoff
	}
	return wait, true
}

// noRetry never retries — useful for methods whose side effects are
// not safe to repeat.
type noRetry struct{}

func (noRetry) Continue(context.Context, error) (time.Duration, bool) { return 0, false }

// NoRetryFactory returns a [RetryerFactory] that never retries.
func NoRetryFactory() RetryerFactory {
	return func() Retryer { return noRetry{} }
}
