// Package circuitbreaker wraps sony/gobreaker with application error mapping.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
)

const (
	defaultTimeout             = 30 * time.Second
	defaultInterval            = time.Minute
	defaultConsecutiveFailures = 5
)

// Settings tunes a breaker. Zero values use defaults.
type Settings struct {
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32

	// Timeout is how long the breaker stays open before half-open probes.
	Timeout time.Duration

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration
}

// Breaker guards calls to a single upstream with a circuit breaker.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a named breaker.
func New[T any](name string, s Settings) *Breaker[T] {
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = defaultConsecutiveFailures
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interval := s.Interval
	if interval == 0 {
		interval = defaultInterval
	}

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})

	return &Breaker[T]{cb: cb}
}

// Execute runs fn through the breaker. When the breaker is open the call is
// rejected immediately with a CircuitOpen error.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		var zero T
		return zero, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithContext(b.cb.Name()),
			apperror.WithCause(err))
	}
	return result, err
}

// State returns the breaker state name for health reporting.
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}
