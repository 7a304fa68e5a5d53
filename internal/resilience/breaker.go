// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// ErrCircuitOpen is returned when a named breaker short-circuits a call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// BreakerSettings configures every breaker created by a Breakers registry.
type BreakerSettings struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// OpenTimeout is the cooldown before a half-open trial request is allowed.
	OpenTimeout time.Duration
	// HalfOpenRequests trial requests are allowed while half-open.
	HalfOpenRequests uint32
	// Interval clears closed-state counts periodically; zero never clears.
	Interval time.Duration
}

// Breakers keeps one circuit breaker per operation class name
// ("notion.query", "notion.get_page", ...).
//
// DETERMINISM NOTE: gobreaker uses real time for the open timeout. Tests
// use short timeouts rather than mocking the clock.
type Breakers struct {
	settings BreakerSettings

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewBreakers creates an empty registry.
func NewBreakers(settings BreakerSettings) *Breakers {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = 1
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = time.Minute
	}
	return &Breakers{
		settings: settings,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (b *Breakers) get(name string) *gobreaker.CircuitBreaker[any] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[name]; ok {
		return cb
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	threshold := b.settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: b.settings.HalfOpenRequests,
		Interval:    b.settings.Interval,
		Timeout:     b.settings.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures < threshold {
				return false
			}
			logging.Warn().
				Str("breaker", name).
				Uint32("consecutive_failures", counts.ConsecutiveFailures).
				Msg("[CIRCUIT BREAKER] Opening circuit")
			return true
		},

		// Only operation-level failures count against the breaker; a 404 or
		// a validation error for one page says nothing about remote health.
		IsSuccessful: func(err error) bool {
			return err == nil || !(IsTransient(err) || errors.Is(err, ErrServiceUnavailable))
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	b.breakers[name] = cb
	return cb
}

// Execute runs fn through the breaker named name. When the circuit is open
// fn is not called and the returned error wraps ErrCircuitOpen.
func (b *Breakers) Execute(name string, fn func() (any, error)) (any, error) {
	cb := b.get(name)
	result, err := cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
			logging.Warn().Str("breaker", name).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, &CircuitOpenError{Name: name, cause: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(float64(cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	return result, nil
}

// Execute is the typed form of (*Breakers).Execute.
func Execute[T any](b *Breakers, name string, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.Execute(name, func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker %s: unexpected result type %T", name, result)
	}
	return typed, nil
}

// State reports the current state of the named breaker as a string.
func (b *Breakers) State(name string) string {
	b.mu.Lock()
	cb, ok := b.breakers[name]
	b.mu.Unlock()
	if !ok {
		return stateToString(gobreaker.StateClosed)
	}
	return stateToString(cb.State())
}

// States returns the state of every breaker created so far, keyed by name.
func (b *Breakers) States() map[string]string {
	b.mu.Lock()
	names := make([]string, 0, len(b.breakers))
	for name := range b.breakers {
		names = append(names, name)
	}
	b.mu.Unlock()

	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = b.State(name)
	}
	return out
}

// CircuitOpenError carries the breaker name of a short-circuited call.
type CircuitOpenError struct {
	Name  string
	cause error
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", ErrCircuitOpen, e.Name, e.cause)
}

func (e *CircuitOpenError) Is(target error) bool { return target == ErrCircuitOpen }

func (e *CircuitOpenError) Unwrap() error { return e.cause }

func (e *CircuitOpenError) ErrorType() string { return "remote" }

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
