// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// Backoff selects how the delay between attempts grows.
type Backoff int

const (
	// BackoffExponential doubles the delay each retry, capped at MaxDelay.
	BackoffExponential Backoff = iota
	// BackoffFixed waits BaseDelay before every retry.
	BackoffFixed
)

// RetryPolicy describes one retry stage. Policies are immutable values and
// several can be chained for one logical call (escalating policies).
type RetryPolicy struct {
	Description string
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Backoff     Backoff
	ShouldRetry func(error) bool
	// RespectRetryAfter waits at least the server's Retry-After hint when
	// the failure carries one.
	RespectRetryAfter bool
}

// Delay returns the wait before retry number retry (0-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if p.Backoff == BackoffFixed {
		return p.BaseDelay
	}
	delay := p.BaseDelay
	for i := 0; i < retry; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) retryable(err error) bool {
	return p.ShouldRetry != nil && p.ShouldRetry(err)
}

// RateLimitPolicy retries throttled calls.
func RateLimitPolicy(maxRetries int, base, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		Description: "rate-limit",
		MaxRetries:  maxRetries,
		BaseDelay:   base,
		MaxDelay:    maxDelay,
		Backoff:     BackoffExponential,
		ShouldRetry: IsRateLimited,

		RespectRetryAfter: true,
	}
}

// ServerErrorPolicy retries 5xx responses and transient network failures.
func ServerErrorPolicy(maxRetries int, base, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		Description: "server-error",
		MaxRetries:  maxRetries,
		BaseDelay:   base,
		MaxDelay:    maxDelay,
		Backoff:     BackoffExponential,
		ShouldRetry: func(err error) bool {
			return IsServerError(err) || IsTransientNetwork(err)
		},
	}
}

// DefaultPolicies returns the rate-limit policy followed by the server-error policy.
func DefaultPolicies(maxRetries int, base, maxDelay time.Duration) []RetryPolicy {
	return []RetryPolicy{
		RateLimitPolicy(maxRetries, base, maxDelay),
		ServerErrorPolicy(maxRetries, base, maxDelay),
	}
}

// ExecuteWithRetry runs fn under each policy in order.
//
// A failure that the current policy considers retryable is retried up to
// MaxRetries times. A failure it does not handle escalates to the next policy
// that does, and returns immediately when none does. The escalating failure
// counts as the new policy's first attempt, so it makes at most MaxRetries
// further calls. Once every policy is exhausted the last failure is returned
// wrapped in *ServiceUnavailableError.
func ExecuteWithRetry[T any](ctx context.Context, operation string, policies []RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := 0

	for i, policy := range policies {
		if attempts > 0 && !policy.retryable(lastErr) {
			continue
		}

		first := 0
		if attempts > 0 {
			first = 1
		}
		for retry := first; retry <= policy.MaxRetries; retry++ {
			if attempts > 0 {
				delay := policy.Delay(retry - 1)
				if hint := RetryAfterOf(lastErr); policy.RespectRetryAfter && hint > delay {
					delay = hint
				}
				metrics.RemoteRetries.WithLabelValues(operation, policy.Description).Inc()
				logging.Ctx(ctx).Debug().
					Str("operation", operation).
					Str("policy", policy.Description).
					Int("attempt", attempts+1).
					Dur("delay", delay).
					Err(lastErr).
					Msg("retrying remote call")
				if err := sleep(ctx, delay); err != nil {
					return zero, err
				}
			}

			result, err := fn(ctx)
			attempts++
			if err == nil {
				return result, nil
			}
			lastErr = err

			if ctx.Err() != nil {
				return zero, err
			}
			if !policy.retryable(err) {
				if anyRetryable(policies[i+1:], err) {
					break
				}
				return zero, err
			}
		}
	}

	if attempts == 0 {
		// No policies: run once and return as-is.
		return fn(ctx)
	}

	logging.Ctx(ctx).Warn().
		Str("operation", operation).
		Int("attempts", attempts).
		Err(lastErr).
		Msg("remote call failed after all retry policies")
	return zero, &ServiceUnavailableError{Operation: operation, Attempts: attempts, Cause: lastErr}
}

func anyRetryable(policies []RetryPolicy, err error) bool {
	for _, p := range policies {
		if p.retryable(err) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusCoder is implemented by errors carrying an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// RetryAfterer is implemented by errors carrying a server Retry-After hint.
type RetryAfterer interface {
	RetryAfter() time.Duration
}

// RetryAfterOf returns the Retry-After hint carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	var ra RetryAfterer
	if errors.As(err, &ra) {
		return ra.RetryAfter()
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// IsRateLimited reports throttling: status 429 or a rate-limit message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if StatusOf(err) == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate_limited")
}

// IsServerError reports a 5xx response.
func IsServerError(err error) bool {
	return StatusOf(err) >= 500
}

// IsTransientNetwork reports timeouts and connection resets.
func IsTransientNetwork(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "connection reset")
}

// IsTransient reports any failure worth retrying: throttling, 502/503,
// other 5xx, timeouts and connection resets.
func IsTransient(err error) bool {
	return IsRateLimited(err) || IsServerError(err) || IsTransientNetwork(err)
}

// ErrServiceUnavailable matches every *ServiceUnavailableError via errors.Is.
var ErrServiceUnavailable = errors.New("remote service unavailable")

// ServiceUnavailableError is returned once all retry policies are exhausted.
type ServiceUnavailableError struct {
	Operation string
	Attempts  int
	Cause     error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempts: %v", ErrServiceUnavailable, e.Operation, e.Attempts, e.Cause)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrServiceUnavailable) match.
func (e *ServiceUnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// ErrorType labels the error for sync metrics.
func (e *ServiceUnavailableError) ErrorType() string { return "remote" }
