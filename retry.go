package carousel

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry defaults: two retries (three attempts) with a 1s, 2s linear backoff.
const (
	DefaultRetries = 2
	DefaultBackoff = time.Second
)

// RetryPolicy decides how often and how patiently a failed operation is retried.
type RetryPolicy struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// Backoff is multiplied by the attempt number to get the wait before the
	// next attempt.
	Backoff time.Duration
	// Retryable reports whether err is worth another attempt.
	// Nil means every error except validation, caller cancellation and a
	// render target that answered with a permanent HTTP error.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the policy used for slide rendering.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: DefaultRetries, Backoff: DefaultBackoff}
}

// linearBackOff waits base × n before attempt n+1.
type linearBackOff struct {
	base time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.base * time.Duration(b.n)
}

func (b *linearBackOff) Reset() { b.n = 0 }

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	if errors.Is(err, ErrInvalidRequest) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// Retry runs op until it succeeds, returns a non-retryable error, ctx is done,
// or the policy's attempts are exhausted. op receives the 1-based attempt
// number. The returned int is the number of attempts made.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context, attempt int) (T, error), notify func(err error, wait time.Duration)) (T, int, error) {
	attempts := 0
	operation := func() (T, error) {
		attempts++
		v, err := op(ctx, attempts)
		if err == nil {
			return v, nil
		}
		// Caller cancellation ends the loop; a per-step timeout does not.
		if ctx.Err() != nil || !p.retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	retries := max(p.Retries, 0)
	opts := []backoff.RetryOption{
		backoff.WithBackOff(&linearBackOff{base: p.Backoff}),
		backoff.WithMaxTries(uint(retries + 1)),
		backoff.WithMaxElapsedTime(0),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}

	v, err := backoff.Retry(ctx, operation, opts...)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return v, attempts, err
}
