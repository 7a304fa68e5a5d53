// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// testEnv bundles an in-memory workspace, store and manager.
type testEnv struct {
	client  *notion.MemoryClient
	store   *database.MemoryStore
	manager *Manager
}

func dbID(kind models.Kind) string { return "db-" + string(kind) }

func testDatabases() map[string]string {
	out := make(map[string]string, len(models.AllKinds))
	for _, k := range models.AllKinds {
		out[string(k)] = dbID(k)
	}
	return out
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{Enabled: true, BatchSize: 3, MaxParallelKinds: 2}
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{client: notion.NewMemoryClient(), store: database.NewMemoryStore()}
	opts := Options{
		Config:    testSyncConfig(),
		Databases: testDatabases(),
		Client:    env.client,
		Store:     env.store,
	}
	if mutate != nil {
		mutate(&opts)
	}
	env.manager = NewManager(opts)
	t.Cleanup(func() { _ = env.manager.Close() })
	return env
}

func (e *testEnv) addPage(kind models.Kind, id, name string, props map[string]notion.Property) {
	all := map[string]notion.Property{dto.PropName: notion.Title{Text: name}}
	for k, v := range props {
		all[k] = v
	}
	e.client.AddPage(dbID(kind), notion.NewPage(id, all))
}

func (e *testEnv) sync(t *testing.T, kind models.Kind, dir Direction) SyncResult {
	t.Helper()
	r, err := e.manager.Sync(context.Background(), kind, dir, "")
	if err != nil {
		t.Fatalf("Sync(%s, %s) error = %v", kind, dir, err)
	}
	return r
}

func repo[E models.Entity](store database.Store, kind models.Kind, newFn func() E) *database.Repository[E] {
	return database.NewRepository(store, kind, newFn)
}

func wrestlers(t *testing.T, store database.Store) []*models.Wrestler {
	t.Helper()
	all, err := repo(store, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} }).FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll wrestlers: %v", err)
	}
	return all
}

func rel(ids ...string) notion.Relation { return notion.Relation{IDs: ids} }

func hasMessage(r SyncResult, substr string) bool {
	for _, m := range r.Messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// stubSummarizer records calls and returns a fixed summary or error.
type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.summary, s.err
}

func (s *stubSummarizer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
