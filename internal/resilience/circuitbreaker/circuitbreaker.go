// Package circuitbreaker puts a sony/gobreaker breaker in front of each
// external dependency of the pipeline: feed hosts, article pages, the text
// oracles and the SQL stores.
//
// A rejected call is reported like any other transport failure, so callers
// degrade the same way whether the dependency failed or the breaker refused.
// Calls aborted by context cancellation do not count against the breaker: a
// group run stopped at shutdown must not trip it.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"feedsift/internal/observability/metrics"
)

// Config tunes one breaker.
type Config struct {
	// Name labels logs and the circuit_breaker_* metrics.
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts; zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0..1] that trips the breaker
	// once MinRequests calls were seen in the current interval.
	FailureThreshold float64
	MinRequests      uint32
}

// OracleConfig is the preset for a text oracle. Oracles sit behind one API
// host each, so a high failure ratio means the provider is down.
func OracleConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// FeedFetchConfig is the preset for feed downloads. Feeds live on unrelated
// hosts, so only a near-total failure rate (lost connectivity) trips it.
func FeedFetchConfig() Config {
	return Config{
		Name:             "feed-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// DetailPageConfig is the preset for article page downloads.
func DetailPageConfig() Config {
	return Config{
		Name:             "detail-page",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// CircuitBreaker guards calls to one dependency.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a breaker from cfg and publishes its initial closed state.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	metrics.RecordCircuitState(cfg.Name, int(gobreaker.StateClosed))
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Call runs fn through cb and returns its typed result. When the breaker
// refuses the call, fn is not invoked and the error satisfies IsRejected.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if IsRejected(err) {
			metrics.RecordCircuitRejected(cb.name)
		}
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

// IsRejected reports whether err came from the breaker refusing a call
// rather than from the dependency.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently refused outright.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
