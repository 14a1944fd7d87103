// Package retry wraps cenkalti/backoff for the provider clients. Only
// idempotent reads go through here; downloads and installs are never retried.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry loop.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy returns a policy with the given retry count and the
// standard intervals.
func DefaultPolicy(retries int) Policy {
	return Policy{
		MaxRetries:      retries,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// Do runs op until it succeeds, returns a Permanent error, the retry budget
// is spent, or ctx is done. The last error is returned unwrapped.
func Do[T any](ctx context.Context, p Policy, name string, op func() (T, error)) (T, error) {
	logger := logging.GetLogger("retry")
	notify := func(err error, wait time.Duration) {
		logger.Debug().Err(err).Str("op", name).Dur("wait", wait).Msg("Retrying after error")
	}
	return backoff.RetryNotifyWithData(op, p.backOff(ctx), notify)
}

// Cause strips the Permanent marker from err, if present.
func Cause(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}
