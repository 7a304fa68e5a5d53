// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package resilience wraps fallible remote operations with bounded retries and
named circuit breakers.

# Retry

ExecuteWithRetry runs an operation under a chain of RetryPolicy values. The
default chain mirrors how the Notion API fails in practice:

 1. rate-limit: HTTP 429 or "rate limit" / "too many requests" messages
 2. server-error: HTTP 5xx, timeouts and connection resets

Each policy retries up to MaxRetries times with fixed or exponential
backoff (delay = min(BaseDelay * 2^retry, MaxDelay)). Errors no policy
handles are returned after the first call. Exhausting every policy yields
a *ServiceUnavailableError that matches ErrServiceUnavailable.

# Circuit breakers

Breakers keeps one sony/gobreaker breaker per operation class. After
FailureThreshold consecutive transient failures the circuit opens and calls
fail fast with ErrCircuitOpen until OpenTimeout elapses; then a single
half-open trial request decides whether to close or reopen. Transitions are logged
and exported as Prometheus metrics.
*/
package resilience
