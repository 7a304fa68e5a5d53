// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/atwsync/internal/logging"
)

const defaultSchedulerInterval = time.Hour

// Scheduler runs a full inbound sync on a fixed interval. It implements
// suture.Service.
type Scheduler struct {
	manager  *Manager
	interval time.Duration
	// runOnStart triggers a run immediately instead of after one interval.
	runOnStart bool
}

// NewScheduler creates a scheduler; a non-positive interval means one hour.
func NewScheduler(manager *Manager, interval time.Duration, runOnStart bool) *Scheduler {
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	return &Scheduler{manager: manager, interval: interval, runOnStart: runOnStart}
}

// Serve blocks until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Sync scheduler started")
	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	op := uuid.NewString()
	ctx = logging.ContextWithCorrelationID(ctx, op)
	logging.Ctx(ctx).Info().Str("operation_id", op).Msg("Scheduled full sync")

	results := s.manager.SyncAll(ctx, Inbound, op)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		logging.Ctx(ctx).Warn().Int("failed", failed).Int("kinds", len(results)).Msg("Scheduled sync finished with failures")
	}
}

// String names the service for the supervisor.
func (s *Scheduler) String() string { return "sync-scheduler" }
