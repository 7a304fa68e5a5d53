// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockService counts Serve calls and can fail a fixed number of times.
type mockService struct {
	name       string
	startCount atomic.Int32
	mu         sync.Mutex
	failsLeft  int
}

func newMockService(name string, fails int) *mockService {
	return &mockService{name: name, failsLeft: fails}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	m.mu.Lock()
	if m.failsLeft > 0 {
		m.failsLeft--
		m.mu.Unlock()
		return errors.New("simulated failure")
	}
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

var _ suture.Service = (*mockService)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTreeConfigDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   TreeConfig
		want TreeConfig
	}{
		{"zero", TreeConfig{}, DefaultTreeConfig()},
		{
			"partial",
			TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second},
			TreeConfig{FailureThreshold: 2, FailureDecay: 30, FailureBackoff: 15 * time.Second, ShutdownTimeout: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewSupervisorTree(quietLogger(), tt.in)
			if tree.config != tt.want {
				t.Errorf("config = %+v, want %+v", tree.config, tt.want)
			}
			if tree.Root() == nil {
				t.Error("root supervisor is nil")
			}
		})
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree := NewSupervisorTree(nil, TreeConfig{ShutdownTimeout: time.Second})

	syncSvc := newMockService("sync", 0)
	hubSvc := newMockService("hub", 0)
	apiSvc := newMockService("api", 0)
	tree.AddSyncService(syncSvc)
	tree.AddMessagingService(hubSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) &&
		(syncSvc.startCount.Load() == 0 || hubSvc.startCount.Load() == 0 || apiSvc.startCount.Load() == 0) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}

	for _, svc := range []*mockService{syncSvc, hubSvc, apiSvc} {
		if svc.startCount.Load() < 1 {
			t.Errorf("%s was not started", svc.name)
		}
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped = %v, %v", report, err)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("scheduler", 2)
	stable := newMockService("http", 0)
	tree.AddSyncService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(200 * time.Millisecond)

	if got := failing.startCount.Load(); got < 3 {
		t.Errorf("failing service starts = %d, want >= 3", got)
	}
	if stable.startCount.Load() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.startCount.Load())
	}
}
