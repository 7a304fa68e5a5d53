// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package session remembers which entity kinds were already synced during
// the current run so repeated triggers (manual, scheduled, dependency
// resolution) do not re-sync the same kind.
package session

import (
	"sort"
	"sync"
	"time"
)

// Deduplicator is a process-lifetime set of synced keys.
// The zero value is not usable; call New.
type Deduplicator struct {
	mu      sync.RWMutex
	synced  map[string]time.Time
	resetAt time.Time
}

// New creates an empty deduplicator.
func New() *Deduplicator {
	return &Deduplicator{synced: make(map[string]time.Time), resetAt: time.Now()}
}

// IsSynced reports whether key was marked since the last Reset.
func (d *Deduplicator) IsSynced(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.synced[key]
	return ok
}

// MarkSynced records key as synced.
func (d *Deduplicator) MarkSynced(key string) {
	d.mu.Lock()
	d.synced[key] = time.Now()
	d.mu.Unlock()
}

// Forget removes one key, allowing it to sync again in this session.
func (d *Deduplicator) Forget(key string) {
	d.mu.Lock()
	delete(d.synced, key)
	d.mu.Unlock()
}

// Reset starts a new session.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	d.synced = make(map[string]time.Time)
	d.resetAt = time.Now()
	d.mu.Unlock()
}

// Keys returns the synced keys in sorted order.
func (d *Deduplicator) Keys() []string {
	d.mu.RLock()
	keys := make([]string, 0, len(d.synced))
	for k := range d.synced {
		keys = append(keys, k)
	}
	d.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// SessionStart returns when the current session began.
func (d *Deduplicator) SessionStart() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.resetAt
}
