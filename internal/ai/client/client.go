// Package client guards generative model calls with a circuit breaker,
// a concurrency limit and tracing.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrCircuitOpen is returned while the circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("model circuit breaker is open")

// abortedError marks a call that ended because the caller's context was done.
type abortedError struct {
	err error
}

func (e *abortedError) Error() string { return e.err.Error() }
func (e *abortedError) Unwrap() error { return e.err }

// Gateway serializes access to the generative models.
type Gateway struct {
	breaker   *gobreaker.CircuitBreaker
	semaphore *semaphore.Weighted
	tracer    trace.Tracer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGateway creates a Gateway from the model and circuit breaker configuration.
func NewGateway(cfg *config.Gemini, cbCfg *config.CircuitBreaker, timeout time.Duration, logger *zap.Logger) *Gateway {
	logger = logger.Named("ai_gateway")

	settings := gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: cbCfg.MaxRequests,
		Interval:    time.Duration(cbCfg.Interval) * time.Millisecond,
		Timeout:     time.Duration(cbCfg.Timeout) * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.As(err, new(*abortedError))
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Gateway{
		breaker:   gobreaker.NewCircuitBreaker(settings),
		semaphore: semaphore.NewWeighted(max(cfg.MaxConcurrent, 1)),
		tracer:    otel.Tracer("github.com/robalyx/stylist/ai"),
		timeout:   timeout,
		logger:    logger,
	}
}

// Call runs a model operation through the gateway.
// Failures caused by the caller's own cancellation or deadline are not
// counted as model failures. The gateway timeout still counts.
func Call[T any](ctx context.Context, g *Gateway, op, model string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	parent := ctx

	ctx, span := g.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("ai.model", model)))
	defer span.End()

	// Try to acquire semaphore
	if err := g.semaphore.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer g.semaphore.Release(1)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (any, error) {
		res, err := fn(ctx)
		if err != nil && parent.Err() != nil {
			return res, &abortedError{err: err}
		}
		return res, err
	})
	if aborted := (*abortedError)(nil); errors.As(err, &aborted) {
		err = aborted.err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}

		g.logger.Warn("Model request failed",
			zap.String("op", op),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return zero, err
	}

	g.logger.Debug("Model request finished",
		zap.String("op", op),
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)))

	return result.(T), nil
}
