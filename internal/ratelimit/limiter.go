// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package ratelimit gates outbound Notion API calls behind per-minute and
// per-hour ceilings. One Limiter is shared by every entity sync service and
// every batch-runner worker in the process.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// slowWaitThreshold logs waits longer than this at debug level.
const slowWaitThreshold = time.Second

// Limiter blocks callers until a remote call is permitted.
// It is safe for concurrent use.
type Limiter struct {
	minute *rate.Limiter
	hour   *rate.Limiter
}

// New creates a limiter allowing perMinute requests per minute and, when
// perHour > 0, at most perHour requests per hour. Bursts are capped at
// one tenth of the minute budget so a cold start cannot dump a full minute
// of calls at once.
func New(perMinute, perHour int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}

	l := &Limiter{
		minute: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
	if perHour > 0 {
		hourBurst := perHour / 60
		if hourBurst < 1 {
			hourBurst = 1
		}
		l.hour = rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), hourBurst)
	}
	return l
}

// Unlimited returns a limiter that never delays. Used by tests.
func Unlimited() *Limiter {
	return &Limiter{minute: rate.NewLimiter(rate.Inf, 1)}
}

// Wait blocks until both ceilings allow one more call. It only returns an
// error when ctx is canceled or its deadline cannot be met.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()

	if l.hour != nil {
		if err := l.hour.Wait(ctx); err != nil {
			return err
		}
	}
	if err := l.minute.Wait(ctx); err != nil {
		return err
	}

	waited := time.Since(start)
	metrics.RateLimitWait.Observe(waited.Seconds())
	if waited > slowWaitThreshold {
		logging.Debug().Dur("waited", waited).Msg("rate limiter delayed remote call")
	}
	return nil
}

// Limit reports the effective per-second rate of the minute bucket.
func (l *Limiter) Limit() rate.Limit {
	return l.minute.Limit()
}
