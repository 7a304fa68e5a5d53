// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/atwsync/internal/models"
)

func TestNewScheduler_DefaultInterval(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, interval := range []time.Duration{0, -time.Minute} {
		if s := NewScheduler(env.manager, interval, false); s.interval != time.Hour {
			t.Errorf("interval %v -> %v, want 1h", interval, s.interval)
		}
	}
	if got := NewScheduler(env.manager, time.Minute, false).String(); got != "sync-scheduler" {
		t.Errorf("String() = %q", got)
	}
}

func TestScheduler_RunsOnStartAndStops(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "w1", "Kurt Angle", nil)

	s := NewScheduler(env.manager, time.Hour, true)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for len(wrestlers(t, env.store)) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	got := wrestlers(t, env.store)
	if len(got) != 1 || got[0].Name != "Kurt Angle" {
		t.Errorf("wrestlers after scheduled run = %+v", got)
	}
}
