package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// GetWeatherRetryOptions returns retry options for weather lookups.
// Lookups gate a submission, so the budget stays short.
func GetWeatherRetryOptions() RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  10 * time.Second,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxRetries:      3,
	}
}

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// WithRetry executes the given operation with exponential backoff using provided options.
// Errors wrapped with Permanent stop the loop and are returned unwrapped.
func WithRetry[T any](ctx context.Context, operation func() (T, error), opts RetryOptions) (T, error) {
	var result T

	// Configure exponential backoff
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
	), opts.MaxRetries)

	// Create backoff operation with context
	backoffOperation := func() error {
		var err error
		result, err = operation()
		return err
	}

	err := backoff.Retry(backoffOperation, backoff.WithContext(b, ctx))
	return result, err
}
