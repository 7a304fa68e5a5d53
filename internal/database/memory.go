// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/atwsync/internal/models"
)

// MemoryStore is a Store backed by maps. It is used by unit tests and by
// the CLI when no database path is configured for a dry run.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[models.Kind]map[int64]Record
	nextID int64
	saves  int
	// FailSave, when set, is returned by Save for the given kind.
	failSave map[models.Kind]error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:     make(map[models.Kind]map[int64]Record),
		failSave: make(map[models.Kind]error),
	}
}

// FailSave makes every Save of kind return err. A nil err clears it.
func (m *MemoryStore) FailSave(kind models.Kind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failSave, kind)
		return
	}
	m.failSave[kind] = err
}

// Saves returns the number of successful Save calls.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryStore) sorted(kind models.Kind, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(m.rows[kind]))
	for _, rec := range m.rows[kind] {
		if keep == nil || keep(rec) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every record of kind ordered by id.
func (m *MemoryStore) All(_ context.Context, kind models.Kind) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(kind, nil), nil
}

// ByID returns the record with id.
func (m *MemoryStore) ByID(_ context.Context, kind models.Kind, id int64) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.rows[kind][id]
	return copyRecord(rec), ok, nil
}

// ByExternalID returns the lowest-id record linked to externalID.
func (m *MemoryStore) ByExternalID(_ context.Context, kind models.Kind, externalID string) (Record, bool, error) {
	if externalID == "" {
		return Record{}, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := first(m.sorted(kind, func(r Record) bool { return r.ExternalID == externalID }), kind, "external_id", externalID)
	return rec, ok, nil
}

// ByName returns the lowest-id record named name.
func (m *MemoryStore) ByName(_ context.Context, kind models.Kind, name string) (Record, bool, error) {
	if name == "" {
		return Record{}, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := first(m.sorted(kind, func(r Record) bool { return r.Name == name }), kind, "name", name)
	return rec, ok, nil
}

// ExternalIDs returns the distinct non-empty external ids of kind, sorted.
func (m *MemoryStore) ExternalIDs(_ context.Context, kind models.Kind) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	ids := []string{}
	for _, rec := range m.rows[kind] {
		if rec.ExternalID != "" && !seen[rec.ExternalID] {
			seen[rec.ExternalID] = true
			ids = append(ids, rec.ExternalID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of records of kind.
func (m *MemoryStore) Count(_ context.Context, kind models.Kind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows[kind]), nil
}

// Save inserts or replaces rec.
func (m *MemoryStore) Save(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failSave[rec.Kind]; err != nil {
		return Record{}, &QueryError{Op: "save", Kind: string(rec.Kind), Err: err}
	}

	if rec.ExternalID != "" {
		for id, other := range m.rows[rec.Kind] {
			if id != rec.ID && other.ExternalID == rec.ExternalID {
				return Record{}, &QueryError{Op: "save", Kind: string(rec.Kind), Err: ErrExternalIDTaken}
			}
		}
	}

	now := time.Now().UTC()
	if m.rows[rec.Kind] == nil {
		m.rows[rec.Kind] = make(map[int64]Record)
	}
	if rec.ID == 0 {
		m.nextID++
		rec.ID = m.nextID
	} else if rec.ID > m.nextID {
		m.nextID = rec.ID
	}
	if prev, ok := m.rows[rec.Kind][rec.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.rows[rec.Kind][rec.ID] = copyRecord(rec)
	m.saves++
	return copyRecord(rec), nil
}

func copyRecord(rec Record) Record {
	if rec.Payload != nil {
		rec.Payload = append([]byte(nil), rec.Payload...)
	}
	return rec
}

var _ Store = (*MemoryStore)(nil)
