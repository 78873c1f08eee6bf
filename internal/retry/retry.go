// Package retry wraps single network calls with bounded retry and linear backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
)

const (
	// DefaultAttempts is the total number of tries (1 initial + 2 retries).
	DefaultAttempts = 3

	// DefaultBaseDelay is multiplied by the retry number: base*1, base*2, ...
	DefaultBaseDelay = 500 * time.Millisecond
)

// Executor retries failed operations with linear backoff.
type Executor struct {
	attempts  int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithAttempts sets the total attempt count.
func WithAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithBaseDelay sets the backoff base delay.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

// withSleep replaces the delay function; used by tests.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = fn
	}
}

// New creates an Executor with defaults of 3 attempts and 500ms base delay.
func New(opts ...Option) *Executor {
	e := &Executor{
		attempts:  DefaultAttempts,
		baseDelay: DefaultBaseDelay,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op, retrying failures up to the attempt bound. The delay before
// retry n is baseDelay*n. Errors marked UnsupportedChain are permanent and
// returned immediately. On exhaustion the last error is decorated with the
// label, the upstream HTTP status if present, and the most specific message
// available from the failure.
func Do[T any](ctx context.Context, e *Executor, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= e.attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}

		if attempt < e.attempts {
			if serr := e.sleep(ctx, e.baseDelay*time.Duration(attempt)); serr != nil {
				return zero, decorate(label, lastErr)
			}
		}
	}

	return zero, decorate(label, lastErr)
}

// retryable reports whether an error is worth another attempt.
func retryable(err error) bool {
	switch apperror.GetCode(err) {
	case apperror.CodeUnsupportedChain, apperror.CodeUnknownProvider:
		return false
	}
	return true
}

// decorate builds the exhaustion error: label, status code, best message.
func decorate(label string, err error) error {
	msg := bestMessage(err)
	status := apperror.GetStatusCode(err)

	opts := []apperror.Option{
		apperror.WithContext(label),
		apperror.WithMessage(msg),
		apperror.WithCause(err),
	}
	if status != 0 {
		opts = append(opts, apperror.WithStatusCode(status))
	}
	return apperror.New(apperror.CodeTransientFailure, opts...)
}

// bestMessage extracts the most specific description from a failure chain.
func bestMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode != 0 {
			return fmt.Sprintf("%s (status %d)", appErr.Message, appErr.StatusCode)
		}
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "request failed"
}
