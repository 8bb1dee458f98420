package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// RetryPolicy bounds retries of transient transport failures.
// Only errors for which domain.IsTransient holds are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below one mean a single try.
	MaxAttempts int

	// NewBackOff creates the delay schedule. Defaults to exponential backoff
	// starting at half a second and capped at ten seconds.
	NewBackOff func() backoff.BackOff
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: domain.DefaultMaxAttempts}
}

func (p RetryPolicy) backOff() backoff.BackOff {
	if p.NewBackOff != nil {
		return p.NewBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return b
}

// retryTransient runs op until it succeeds, fails permanently or the
// attempts are exhausted.
func retryTransient[T any](ctx context.Context, policy RetryPolicy, what string, op func() (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !domain.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("%s failed, retrying in %s: %v", what, next.Round(time.Millisecond), err)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return v, err
}
