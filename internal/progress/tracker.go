// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// DefaultTTL is how long a finished operation stays in the live map.
const DefaultTTL = 30 * time.Second

// maxLogLines caps the per-operation log.
const maxLogLines = 500

// Listener observes operation lifecycle events. Callbacks run on the
// goroutine that caused the event, after the tracker lock is released, and
// must not block for long.
type Listener interface {
	OnStarted(p SyncProgress)
	OnUpdated(p SyncProgress)
	OnCompleted(p SyncProgress)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Started   func(SyncProgress)
	Updated   func(SyncProgress)
	Completed func(SyncProgress)
}

func (l ListenerFuncs) OnStarted(p SyncProgress) {
	if l.Started != nil {
		l.Started(p)
	}
}

func (l ListenerFuncs) OnUpdated(p SyncProgress) {
	if l.Updated != nil {
		l.Updated(p)
	}
}

func (l ListenerFuncs) OnCompleted(p SyncProgress) {
	if l.Completed != nil {
		l.Completed(p)
	}
}

// Tracker records the progress of sync operations keyed by operation id.
// All mutations go through one mutex so concurrent batch workers never lose
// updates, and CurrentStep never decreases.
type Tracker struct {
	mu        sync.Mutex
	ops       map[string]*SyncProgress
	listeners []Listener
	ttl       time.Duration
	history   HistoryStore
	now       func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL sets how long finished operations stay live. Zero or negative
// keeps DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithHistory persists every finished operation so Get still answers after
// eviction.
func WithHistory(h HistoryStore) Option {
	return func(t *Tracker) { t.history = h }
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		ops: make(map[string]*SyncProgress),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddListener registers l for all subsequent events.
func (t *Tracker) AddListener(l Listener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, l)
	t.mu.Unlock()
}

// Start begins tracking id. Starting an id that already exists restarts it.
func (t *Tracker) Start(id, label string, totalSteps int) {
	now := t.now()
	p := &SyncProgress{
		OperationID: id,
		Label:       label,
		TotalSteps:  totalSteps,
		Status:      StatusRunning,
		StartedAt:   now,
		LastUpdated: now,
	}
	p.LogLines = append(p.LogLines, LogLine{Time: now, Level: LevelInfo, Message: "Started " + label})

	t.mu.Lock()
	t.ops[id] = p
	snap := p.clone()
	listeners := t.listenersLocked()
	t.updateGaugeLocked()
	t.mu.Unlock()

	logging.Debug().Str("operation_id", id).Str("label", label).Int("total_steps", totalSteps).Msg("Operation started")
	for _, l := range listeners {
		l.OnStarted(snap)
	}
}

// Update moves id to step with a description. Steps lower than the current
// one are ignored for the step counter but still update the description.
func (t *Tracker) Update(id string, step int, message string) {
	t.mutate(id, func(p *SyncProgress, now time.Time) {
		if step > p.CurrentStep {
			p.CurrentStep = step
		}
		if p.CurrentStep > p.TotalSteps {
			p.TotalSteps = p.CurrentStep
		}
		p.CurrentStepDescription = message
		p.appendLog(now, LevelInfo, message)
	})
}

// AddLog appends a log line to id.
func (t *Tracker) AddLog(id, text, level string) {
	if level == "" {
		level = LevelInfo
	}
	t.mutate(id, func(p *SyncProgress, now time.Time) {
		p.appendLog(now, level, text)
	})
}

// Complete seals id. A false success marks it FAILED.
func (t *Tracker) Complete(id string, success bool, message string, resultCount int) {
	t.finish(id, success, message, resultCount)
}

// Fail seals id as FAILED.
func (t *Tracker) Fail(id, message string) {
	t.finish(id, false, message, -1)
}

// Get returns a snapshot of id from the live map, falling back to the
// history store for evicted operations.
func (t *Tracker) Get(id string) (SyncProgress, bool) {
	t.mu.Lock()
	p, ok := t.ops[id]
	var snap SyncProgress
	if ok {
		snap = p.clone()
	}
	history := t.history
	t.mu.Unlock()

	if ok {
		return snap, true
	}
	if history == nil {
		return SyncProgress{}, false
	}
	stored, found, err := history.Load(context.Background(), id)
	if err != nil {
		logging.Warn().Err(err).Str("operation_id", id).Msg("Failed to load progress history")
		return SyncProgress{}, false
	}
	return stored, found
}

// Active returns snapshots of every live operation, newest first.
func (t *Tracker) Active() []SyncProgress {
	t.mu.Lock()
	out := make([]SyncProgress, 0, len(t.ops))
	for _, p := range t.ops {
		out = append(out, p.clone())
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Evict drops id from the live map immediately.
func (t *Tracker) Evict(id string) {
	t.mu.Lock()
	delete(t.ops, id)
	t.updateGaugeLocked()
	t.mu.Unlock()
}

func (t *Tracker) finish(id string, success bool, message string, resultCount int) {
	var snap SyncProgress
	found := t.mutateNotify(id, false, func(p *SyncProgress, now time.Time) {
		if success {
			p.Status = StatusCompleted
			p.CurrentStep = p.TotalSteps
			p.appendLog(now, LevelSuccess, message)
		} else {
			p.Status = StatusFailed
			p.appendLog(now, LevelError, message)
		}
		p.Message = message
		if resultCount >= 0 {
			p.ResultCount = resultCount
		}
		completed := now
		p.CompletedAt = &completed
		snap = p.clone()
	})
	if !found {
		return
	}

	t.mu.Lock()
	listeners := t.listenersLocked()
	history := t.history
	ttl := t.ttl
	t.updateGaugeLocked()
	t.mu.Unlock()

	if history != nil {
		if err := history.Save(context.Background(), snap); err != nil {
			logging.Warn().Err(err).Str("operation_id", id).Msg("Failed to persist progress history")
		}
	}

	time.AfterFunc(ttl, func() { t.evictIfDone(id, snap.StartedAt) })

	for _, l := range listeners {
		l.OnCompleted(snap)
	}
}

// evictIfDone removes id unless it was restarted after startedAt.
func (t *Tracker) evictIfDone(id string, startedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.ops[id]
	if !ok || !p.Done() || !p.StartedAt.Equal(startedAt) {
		return
	}
	delete(t.ops, id)
	t.updateGaugeLocked()
}

func (t *Tracker) mutate(id string, fn func(p *SyncProgress, now time.Time)) {
	t.mutateNotify(id, true, fn)
}

// mutateNotify applies fn to a running operation. It returns false for
// unknown or already finished ids.
func (t *Tracker) mutateNotify(id string, notify bool, fn func(p *SyncProgress, now time.Time)) bool {
	now := t.now()

	t.mu.Lock()
	p, ok := t.ops[id]
	if !ok || p.Done() {
		t.mu.Unlock()
		if !ok {
			logging.Debug().Str("operation_id", id).Msg("Ignoring progress update for unknown operation")
		}
		return false
	}
	fn(p, now)
	p.LastUpdated = now
	snap := p.clone()
	listeners := t.listenersLocked()
	t.mu.Unlock()

	if notify {
		for _, l := range listeners {
			l.OnUpdated(snap)
		}
	}
	return true
}

func (t *Tracker) listenersLocked() []Listener {
	return append([]Listener(nil), t.listeners...)
}

func (t *Tracker) updateGaugeLocked() {
	running := 0
	for _, p := range t.ops {
		if p.Status == StatusRunning {
			running++
		}
	}
	metrics.ProgressActiveOperations.Set(float64(running))
}

func (p *SyncProgress) appendLog(now time.Time, level, message string) {
	if message == "" {
		return
	}
	p.LogLines = append(p.LogLines, LogLine{Time: now, Level: level, Message: message})
	if len(p.LogLines) > maxLogLines {
		p.LogLines = p.LogLines[len(p.LogLines)-maxLogLines:]
	}
}
