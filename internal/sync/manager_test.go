// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/progress"
)

func TestManager_RegistersEveryKind(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, k := range models.AllKinds {
		if _, ok := env.manager.Service(k); !ok {
			t.Errorf("no service registered for %s", k)
		}
	}
	if got := env.manager.Kinds(); len(got) != len(models.AllKinds) {
		t.Errorf("Kinds() = %v", got)
	}
}

func TestManager_SyncRejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Config.DisabledEntities = []string{"injury"}
	})

	tests := []struct {
		name string
		kind models.Kind
		want error
	}{
		{"unknown kind", models.Kind("match"), ErrUnknownKind},
		{"disabled kind", models.KindInjury, ErrEntityDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.manager.Sync(context.Background(), tt.kind, Inbound, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("Sync() error = %v, want %v", err, tt.want)
			}
			if !IsRequestError(err) {
				t.Errorf("IsRequestError(%v) = false", err)
			}
			if _, err := env.manager.Start(tt.kind, Inbound); !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManager_LevelsRespectDependencies(t *testing.T) {
	env := newTestEnv(t, nil)
	levels := env.manager.levels(env.manager.Kinds())

	position := map[models.Kind]int{}
	for i, level := range levels {
		for _, k := range level {
			position[k] = i
		}
	}
	for _, k := range models.AllKinds {
		svc, _ := env.manager.Service(k)
		for _, dep := range svc.Depends() {
			if position[dep] >= position[k] {
				t.Errorf("%s (level %d) does not come after %s (level %d)", k, position[k], dep, position[dep])
			}
		}
	}
}

func TestManager_SyncAllRunsEveryKind(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", nil)
	env.addPage(models.KindShow, "s1", "Show", nil)
	env.addPage(models.KindSegment, "seg1", "Match", map[string]notion.Property{dto.PropShow: rel("s1")})

	var mu sync.Mutex
	seen := map[string]bool{}
	env.manager.OnResult(func(_ string, _ Direction, r SyncResult) {
		mu.Lock()
		seen[r.EntityName] = true
		mu.Unlock()
	})

	results := env.manager.SyncAll(context.Background(), Inbound, "full-1")
	if len(results) != len(models.AllKinds) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(models.AllKinds))
	}
	for i, r := range results {
		if r.EntityName != models.AllKinds[i].Label() {
			t.Errorf("results[%d] = %s, want %s", i, r.EntityName, models.AllKinds[i].Label())
		}
		if !r.Success {
			t.Errorf("%s failed: %s", r.EntityName, r.ErrorMessage)
		}
	}
	if len(seen) != len(models.AllKinds) {
		t.Errorf("listeners saw %d kinds", len(seen))
	}

	p, ok := env.manager.Tracker().Get("full-1")
	if !ok || p.Status != progress.StatusCompleted {
		t.Errorf("full sync progress = %+v, %v", p, ok)
	}
	if n, _ := env.store.Count(context.Background(), models.KindSegment); n != 1 {
		t.Errorf("segments = %d, want 1", n)
	}
}

func TestManager_SyncAllResetsSessionDedup(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", nil)
	env.sync(t, models.KindWrestler, Inbound)
	if !env.manager.dedup.IsSynced(string(models.KindWrestler)) {
		t.Fatal("wrestler not marked synced")
	}

	for _, r := range env.manager.SyncAll(context.Background(), Inbound, "") {
		if r.EntityName == models.KindWrestler.Label() && hasMessage(r, "already synced") {
			t.Error("SyncAll used stale session state")
		}
	}
}

func TestManager_StartRunsInBackground(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindTitle, "t1", "World Heavyweight Championship", nil)

	done := make(chan SyncResult, 1)
	env.manager.OnResult(func(_ string, _ Direction, r SyncResult) { done <- r })

	op, err := env.manager.Start(models.KindTitle, Inbound)
	if err != nil || op == "" {
		t.Fatalf("Start() = %q, %v", op, err)
	}
	select {
	case r := <-done:
		if !r.Success || r.CreatedCount != 1 {
			t.Errorf("result = %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("background sync did not finish")
	}
	if _, ok := env.manager.Tracker().Get(op); !ok {
		t.Errorf("no progress for operation %s", op)
	}
}

func TestManager_StartAfterClose(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.manager.Close(); err != nil {
		t.Fatal(err)
	}
	op, err := env.manager.StartAll(Inbound)
	if !errors.Is(err, ErrManagerClosed) {
		t.Errorf("StartAll() error = %v, want ErrManagerClosed", err)
	}
	if p, ok := env.manager.Tracker().Get(op); !ok || p.Status != progress.StatusFailed {
		t.Errorf("queued operation after Close = %+v, %v", p, ok)
	}
}

func TestManager_RecordsHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	env.client.FailList(dbID(models.KindTitle), errors.New("down"))

	for i := 0; i < 3; i++ {
		env.sync(t, models.KindTitle, Inbound)
	}
	report := env.manager.Health().Check()
	if report.Up() || report.ConsecutiveFailures != 3 {
		t.Errorf("report = %+v, want DOWN after 3 failures", report)
	}
}

func TestManager_HealthCheckReportsSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", nil)
	env.sync(t, models.KindWrestler, Inbound)

	report := env.manager.HealthCheck()
	if report.Session == nil {
		t.Fatal("report has no session")
	}
	if got := report.Session.SyncedKinds; len(got) != 1 || got[0] != string(models.KindWrestler) {
		t.Errorf("SyncedKinds = %v", got)
	}
	if report.Session.Started.IsZero() {
		t.Error("session start not set")
	}
}

func TestManager_StartForgetsSessionMark(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", nil)
	env.sync(t, models.KindWrestler, Inbound)
	if r := env.sync(t, models.KindWrestler, Inbound); !hasMessage(r, "already synced") {
		t.Fatalf("second Sync() = %+v, want session skip", r)
	}

	done := make(chan SyncResult, 1)
	env.manager.OnResult(func(_ string, _ Direction, r SyncResult) { done <- r })
	if _, err := env.manager.Start(models.KindWrestler, Inbound); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-done:
		if hasMessage(r, "already synced") {
			t.Errorf("manual trigger was skipped: %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("background sync did not finish")
	}
}

func TestManager_SyncAllEvictsPerKindRuns(t *testing.T) {
	env := newTestEnv(t, nil)
	env.manager.SyncAll(context.Background(), Inbound, "full-2")

	for _, p := range env.manager.Tracker().Active() {
		if p.OperationID != "full-2" {
			t.Errorf("per-kind run %s still live", p.OperationID)
		}
	}
	if _, ok := env.manager.Tracker().Get("full-2"); !ok {
		t.Error("parent operation evicted")
	}
}

// rendezvousStore holds name lookups of one kind until a second caller
// arrives or wait expires, so two runs identifying the same page overlap.
type rendezvousStore struct {
	database.Store
	kind models.Kind
	wait time.Duration

	mu      sync.Mutex
	arrived int
	both    chan struct{}
}

func newRendezvousStore(kind models.Kind) *rendezvousStore {
	return &rendezvousStore{
		Store: database.NewMemoryStore(),
		kind:  kind,
		wait:  200 * time.Millisecond,
		both:  make(chan struct{}),
	}
}

func (s *rendezvousStore) ByName(ctx context.Context, kind models.Kind, name string) (database.Record, bool, error) {
	if kind == s.kind {
		s.mu.Lock()
		s.arrived++
		if s.arrived == 2 {
			close(s.both)
		}
		s.mu.Unlock()
		select {
		case <-s.both:
		case <-time.After(s.wait):
		}
	}
	return s.Store.ByName(ctx, kind, name)
}

func TestManager_ConcurrentDependentSyncsCreateOneRow(t *testing.T) {
	store := newRendezvousStore(models.KindShow)
	env := newTestEnv(t, func(o *Options) { o.Store = store })
	env.addPage(models.KindShow, "s1", "Monday Night Mayhem", nil)
	env.addPage(models.KindSegment, "seg1", "Opening Match", map[string]notion.Property{
		dto.PropShow: rel("s1"),
	})

	kinds := []models.Kind{models.KindShow, models.KindSegment}
	results := make([]SyncResult, len(kinds))
	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind models.Kind) {
			defer wg.Done()
			r, err := env.manager.Sync(context.Background(), kind, Inbound, "")
			if err != nil {
				t.Errorf("Sync(%s) error = %v", kind, err)
			}
			results[i] = r
		}(i, kind)
	}
	wg.Wait()

	for _, r := range results {
		if !r.Success || r.ErrorCount != 0 {
			t.Errorf("%s result = %+v", r.EntityName, r)
		}
	}
	shows, err := store.All(context.Background(), models.KindShow)
	if err != nil {
		t.Fatal(err)
	}
	if len(shows) != 1 {
		t.Fatalf("show rows = %d, want 1: %+v", len(shows), shows)
	}
	segs, err := repo(store, models.KindSegment, func() *models.Segment { return &models.Segment{} }).FindAll(context.Background())
	if err != nil || len(segs) != 1 {
		t.Fatalf("segments = %v, err = %v", segs, err)
	}
	if segs[0].ShowID != shows[0].ID {
		t.Errorf("segment show id = %d, want %d", segs[0].ShowID, shows[0].ID)
	}
}
