// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
manager.go - Sync Manager Registry and Orchestration

The Manager owns one EntityService per kind and is the single entry point
for triggering sync runs.

Operations:
  - Sync(): one kind, one direction, blocking
  - SyncAll(): every enabled kind in dependency order, blocking
  - Start() / StartAll(): the same in the background, returning an operation id
  - Integrity(): duplicate, incomplete and dangling rows in the local store
  - Close(): cancels background runs and waits for them

Thread Safety:
  - One mutex per kind serializes runs of that kind, including on-demand
    syncs of referenced pages
  - listenersMu protects result listeners
  - wg tracks background runs for Close
*/

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/progress"
	"github.com/tomtom215/atwsync/internal/ratelimit"
	"github.com/tomtom215/atwsync/internal/session"
)

// ResultListener receives every finished per-kind result.
type ResultListener func(operationID string, dir Direction, result SyncResult)

// Options wires a Manager.
type Options struct {
	Config     config.SyncConfig
	Databases  map[string]string
	Client     notion.Client
	Store      database.Store
	Tracker    *progress.Tracker
	Dedup      *session.Deduplicator
	Limiter    *ratelimit.Limiter
	Health     *HealthMonitor
	Summarizer Summarizer
}

// Manager dispatches sync runs to the registered services.
type Manager struct {
	cfg      config.SyncConfig
	services map[models.Kind]Service
	locks    map[models.Kind]*sync.Mutex
	store    database.Store
	tracker  *progress.Tracker
	dedup    *session.Deduplicator
	health   *HealthMonitor

	listenersMu sync.RWMutex
	listeners   []ResultListener

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
	closeMu sync.Mutex
}

// NewManager registers a service for every entity kind.
func NewManager(opts Options) *Manager {
	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	dedup := opts.Dedup
	if dedup == nil {
		dedup = session.New()
	}
	health := opts.Health
	if health == nil {
		health = NewHealthMonitor(HealthConfig{Enabled: opts.Config.Enabled, TokenConfigured: true})
	}

	deps := Deps{
		Client:    opts.Client,
		Store:     opts.Store,
		Tracker:   tracker,
		Dedup:     dedup,
		Limiter:   opts.Limiter,
		Databases: opts.Databases,
		Settings: Settings{
			BatchSize:   opts.Config.BatchSize,
			ItemTimeout: opts.Config.ItemTimeout,
			BatchPause:  opts.Config.BatchPause,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      opts.Config,
		services: make(map[models.Kind]Service, len(models.AllKinds)),
		locks:    make(map[models.Kind]*sync.Mutex, len(models.AllKinds)),
		store:    opts.Store,
		tracker:  tracker,
		dedup:    dedup,
		health:   health,
		baseCtx:  ctx,
		cancel:   cancel,
	}

	summarizer := opts.Summarizer
	m.register(
		NewEntityService(SeasonKind(), deps),
		NewEntityService(ShowTypeKind(), deps),
		NewEntityService(ShowTemplateKind(), deps),
		NewEntityService(WrestlerKind(), deps),
		NewEntityService(NPCKind(), deps),
		NewEntityService(FactionKind(), deps),
		NewEntityService(TeamKind(), deps),
		NewEntityService(InjuryKind(), deps),
		NewEntityService(TitleKind(), deps),
		NewEntityService(ShowKind(), deps),
		NewEntityService(TitleReignKind(), deps),
		NewEntityService(RivalryKind(), deps),
		NewEntityService(SegmentKind(summarizer), deps),
	)
	return m
}

func (m *Manager) register(services ...Service) {
	for _, svc := range services {
		m.services[svc.Kind()] = svc
		m.locks[svc.Kind()] = &sync.Mutex{}
	}
	for _, svc := range services {
		svc.bind(m)
	}
}

func (m *Manager) kindLock(kind models.Kind) *sync.Mutex {
	return m.locks[kind]
}

// Service returns the service registered for kind.
func (m *Manager) Service(kind models.Kind) (Service, bool) {
	svc, ok := m.services[kind]
	return svc, ok
}

// Tracker returns the shared progress tracker.
func (m *Manager) Tracker() *progress.Tracker { return m.tracker }

// Health returns the health monitor.
func (m *Manager) Health() *HealthMonitor { return m.health }

// HealthCheck is the health report with the current sync session attached.
func (m *Manager) HealthCheck() HealthReport {
	report := m.health.Check()
	report.Session = &SessionInfo{Started: m.dedup.SessionStart(), SyncedKinds: m.dedup.Keys()}
	return report
}

// Integrity checks the local store for duplicates and dangling references.
func (m *Manager) Integrity(ctx context.Context) (IntegrityReport, error) {
	return Integrity(ctx, m.store)
}

// OnResult registers a listener for finished per-kind results.
func (m *Manager) OnResult(l ResultListener) {
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, l)
	m.listenersMu.Unlock()
}

func (m *Manager) notify(op string, dir Direction, r SyncResult) {
	m.listenersMu.RLock()
	listeners := append([]ResultListener(nil), m.listeners...)
	m.listenersMu.RUnlock()
	for _, l := range listeners {
		l(op, dir, r)
	}
}

// Kinds returns the enabled kinds in dependency order.
func (m *Manager) Kinds() []models.Kind {
	out := make([]models.Kind, 0, len(models.AllKinds))
	for _, k := range models.AllKinds {
		if _, ok := m.services[k]; ok && m.cfg.IsEntityEnabled(string(k)) {
			out = append(out, k)
		}
	}
	return out
}

// check validates a request without running it.
func (m *Manager) check(kind models.Kind) (Service, error) {
	svc, ok := m.services[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !m.cfg.IsEntityEnabled(string(kind)) {
		return nil, fmt.Errorf("%w: %s", ErrEntityDisabled, kind)
	}
	return svc, nil
}

// Sync runs one kind in one direction and blocks until it finishes. An
// empty operationID is replaced by a new one. The error is non-nil only
// when the request itself is invalid; run failures are in the result.
func (m *Manager) Sync(ctx context.Context, kind models.Kind, dir Direction, operationID string) (SyncResult, error) {
	svc, err := m.check(kind)
	if err != nil {
		return SyncResult{}, err
	}
	if operationID == "" {
		operationID = uuid.NewString()
	}
	return m.run(ctx, svc, dir, operationID), nil
}

func (m *Manager) run(ctx context.Context, svc Service, dir Direction, op string) SyncResult {
	lock := m.kindLock(svc.Kind())
	lock.Lock()
	defer lock.Unlock()

	ctx = logging.ContextWithEntityKind(ctx, string(svc.Kind()))
	start := time.Now()
	var result SyncResult
	if dir == Outbound {
		result = svc.Outbound(ctx, op)
	} else {
		result = svc.Inbound(ctx, op)
	}
	m.health.Record(string(svc.Kind()), dir, result, time.Since(start))
	m.notify(op, dir, result)
	return result
}

// SyncAll runs every enabled kind. Kinds are grouped into dependency
// levels; a level starts after the previous one finished and runs up to
// MaxParallelKinds kinds at once. Inbound runs reset session
// deduplication first. Results come back in dependency order.
func (m *Manager) SyncAll(ctx context.Context, dir Direction, operationID string) []SyncResult {
	if operationID == "" {
		operationID = uuid.NewString()
	}
	if dir == Inbound {
		m.dedup.Reset()
	}

	kinds := m.Kinds()
	log := logging.Ctx(ctx).With().Str("operation_id", operationID).Str("direction", string(dir)).Logger()
	log.Info().Int("kinds", len(kinds)).Msg("Starting full sync")
	m.tracker.Start(operationID, "Full Sync", len(kinds))

	results := make(map[models.Kind]SyncResult, len(kinds))
	var resultsMu sync.Mutex
	done := 0

	limit := m.cfg.MaxParallelKinds
	if limit <= 0 {
		limit = 1
	}
	for _, level := range m.levels(kinds) {
		if ctx.Err() != nil {
			break
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, kind := range level {
			svc := m.services[kind]
			g.Go(func() error {
				r := m.run(gctx, svc, dir, operationID+":"+string(kind))
				resultsMu.Lock()
				results[kind] = r
				done++
				step := done
				resultsMu.Unlock()
				m.tracker.Update(operationID, step, r.Summary())
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]SyncResult, 0, len(results))
	failed, synced := 0, 0
	for _, k := range kinds {
		r, ok := results[k]
		if !ok {
			continue
		}
		out = append(out, r)
		synced += r.Synced()
		if !r.Success {
			failed++
		}
	}

	if err := ctx.Err(); err != nil {
		m.tracker.Fail(operationID, "full sync canceled: "+err.Error())
	} else {
		msg := fmt.Sprintf("%d kinds synced, %d failed", len(out)-failed, failed)
		m.tracker.Complete(operationID, failed == 0, msg, synced)
	}
	// Per-kind runs are summarized by the parent; history still has them.
	for _, k := range kinds {
		m.tracker.Evict(operationID + ":" + string(k))
	}
	log.Info().Int("failed", failed).Int("synced", synced).Msg("Full sync finished")
	return out
}

// levels groups kinds so every kind comes after the kinds it depends on.
func (m *Manager) levels(kinds []models.Kind) [][]models.Kind {
	index := make(map[models.Kind]int, len(models.AllKinds))
	for i, k := range models.AllKinds {
		index[k] = i
	}
	level := make(map[models.Kind]int, len(kinds))
	var depth func(k models.Kind) int
	depth = func(k models.Kind) int {
		if d, ok := level[k]; ok {
			return d
		}
		d := 0
		if svc, ok := m.services[k]; ok {
			for _, dep := range svc.Depends() {
				if dep != k && index[dep] < index[k] {
					d = max(d, depth(dep)+1)
				}
			}
		}
		level[k] = d
		return d
	}

	maxLevel := 0
	for _, k := range kinds {
		maxLevel = max(maxLevel, depth(k))
	}
	out := make([][]models.Kind, maxLevel+1)
	for _, k := range kinds {
		out[level[k]] = append(out[level[k]], k)
	}
	for _, l := range out {
		sort.SliceStable(l, func(i, j int) bool { return index[l[i]] < index[l[j]] })
	}
	return out
}

// Start runs Sync in the background and returns its operation id. The id
// is tracked as queued until the run takes the kind lock. An inbound Start
// is a manual trigger and runs even when the kind already synced in this
// session.
func (m *Manager) Start(kind models.Kind, dir Direction) (string, error) {
	svc, err := m.check(kind)
	if err != nil {
		return "", err
	}
	if dir == Inbound {
		m.dedup.Forget(string(kind))
	}
	op := uuid.NewString()
	m.tracker.Start(op, "Queued "+string(kind)+" sync", 0)
	err = m.goBackground(func(ctx context.Context) {
		r := m.run(ctx, svc, dir, op)
		logging.Ctx(ctx).Debug().Str("operation_id", op).Msg(r.Summary())
	})
	if err != nil {
		m.tracker.Fail(op, err.Error())
	}
	return op, err
}

// StartAll runs SyncAll in the background and returns its operation id.
func (m *Manager) StartAll(dir Direction) (string, error) {
	op := uuid.NewString()
	m.tracker.Start(op, "Queued full sync", 0)
	err := m.goBackground(func(ctx context.Context) {
		m.SyncAll(ctx, dir, op)
	})
	if err != nil {
		m.tracker.Fail(op, err.Error())
	}
	return op, err
}

func (m *Manager) goBackground(fn func(ctx context.Context)) error {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error().Interface("panic", r).Msg("Background sync panicked")
			}
		}()
		fn(m.baseCtx)
	}()
	return nil
}

// Close cancels background runs and waits for them to return.
func (m *Manager) Close() error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	m.closeMu.Unlock()

	m.cancel()
	m.wg.Wait()
	return nil
}

// IsRequestError reports whether err rejects a request before any run,
// as opposed to a failure while running.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrUnknownKind) || errors.Is(err, ErrEntityDisabled) ||
		errors.Is(err, ErrInvalidDirection) || errors.Is(err, ErrManagerClosed)
}
