package modelclient

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds the exponential-backoff-with-jitter wrapper every
// provider calls through, per spec.md §4.5.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig matches the teacher's promoted indirect dependency on
// cenkalti/backoff/v4, replacing api_utils.py's hand-rolled
// `2**attempt + jitter` sleep.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     10 * time.Second,
}

// withRetry runs call, retrying on any error except one wrapping
// ErrNonRetryable (4xx responses are never retried). ctx cancellation
// aborts the retry loop immediately.
func withRetry(ctx context.Context, cfg RetryConfig, call func() (string, error)) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = 0

	bounded := backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)

	var result string
	op := func() error {
		text, err := call()
		if err != nil {
			if errors.Is(err, ErrNonRetryable) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = text
		return nil
	}

	if err := backoff.Retry(op, bounded); err != nil {
		return "", err
	}
	return result, nil
}
