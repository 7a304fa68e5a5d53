// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// historyKeyPrefix namespaces progress snapshots in BadgerDB.
const historyKeyPrefix = "progress:"

// HistoryStore keeps snapshots of finished operations.
type HistoryStore interface {
	Save(ctx context.Context, p SyncProgress) error
	Load(ctx context.Context, id string) (SyncProgress, bool, error)
}

// BadgerHistory stores finished operations in BadgerDB with a TTL.
type BadgerHistory struct {
	db  *badger.DB
	ttl time.Duration
	own bool
}

// NewBadgerHistory uses an already open database. ttl <= 0 keeps entries forever.
func NewBadgerHistory(db *badger.DB, ttl time.Duration) *BadgerHistory {
	return &BadgerHistory{db: db, ttl: ttl}
}

// OpenBadgerHistory opens (or creates) a database at path. An empty path
// opens an in-memory database.
func OpenBadgerHistory(path string, ttl time.Duration) (*BadgerHistory, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress history: %w", err)
	}
	return &BadgerHistory{db: db, ttl: ttl, own: true}, nil
}

// Save stores p under its operation id.
func (h *BadgerHistory) Save(ctx context.Context, p SyncProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return h.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(historyKeyPrefix+p.OperationID), data)
		if h.ttl > 0 {
			entry = entry.WithTTL(h.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Load returns the stored snapshot for id.
func (h *BadgerHistory) Load(ctx context.Context, id string) (SyncProgress, bool, error) {
	var p SyncProgress
	found := false
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(historyKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return SyncProgress{}, false, fmt.Errorf("load progress: %w", err)
	}
	return p, found, nil
}

// Close closes the database when this store opened it.
func (h *BadgerHistory) Close() error {
	if !h.own {
		return nil
	}
	return h.db.Close()
}

// MemoryHistory is a map-backed HistoryStore without expiry.
type MemoryHistory struct {
	mu    sync.Mutex
	items map[string]SyncProgress
}

// NewMemoryHistory creates an empty store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{items: make(map[string]SyncProgress)}
}

func (h *MemoryHistory) Save(_ context.Context, p SyncProgress) error {
	h.mu.Lock()
	h.items[p.OperationID] = p.clone()
	h.mu.Unlock()
	return nil
}

func (h *MemoryHistory) Load(_ context.Context, id string) (SyncProgress, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.items[id]
	if !ok {
		return SyncProgress{}, false, nil
	}
	return p.clone(), true, nil
}
