// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/atwsync/internal/batch"
	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/progress"
	"github.com/tomtom215/atwsync/internal/ratelimit"
	"github.com/tomtom215/atwsync/internal/session"
)

// Progress steps of an inbound run.
const (
	stepLoadLocal = iota + 1
	stepQueryRemote
	stepFetch
	stepConvert
	stepSave

	inboundSteps = stepSave
)

// Progress steps of an outbound run.
const (
	stepPushLoad = iota + 1
	stepPush

	outboundSteps = stepPush
)

// Settings tunes the batch runner for every service.
type Settings struct {
	BatchSize   int
	ItemTimeout time.Duration
	BatchPause  time.Duration
}

// Deps are the collaborators shared by every service. Tracker and Dedup
// are created when nil. Limiter is only needed when Client does not rate
// limit itself.
type Deps struct {
	Client    notion.Client
	Store     database.Store
	Tracker   *progress.Tracker
	Dedup     *session.Deduplicator
	Limiter   *ratelimit.Limiter
	Databases map[string]string
	Settings  Settings
}

// Service is the kind-independent view of an EntityService.
type Service interface {
	Kind() models.Kind
	Depends() []models.Kind
	// Configured reports whether a Notion database id is set for the kind.
	Configured() bool
	Inbound(ctx context.Context, operationID string) SyncResult
	Outbound(ctx context.Context, operationID string) SyncResult

	syncPages(ctx context.Context, res *Resolver, ids []string) SyncResult
	bind(reg registry)
}

// EntityService runs inbound and outbound sync for one kind.
type EntityService[D dto.Record, E models.Entity] struct {
	kind     Kind[D, E]
	client   notion.Client
	store    database.Store
	repo     *database.Repository[E]
	tracker  *progress.Tracker
	dedup    *session.Deduplicator
	limiter  *ratelimit.Limiter
	database string
	settings Settings
	reg      registry
	now      func() time.Time
}

// NewEntityService creates the service for k.
func NewEntityService[D dto.Record, E models.Entity](k Kind[D, E], deps Deps) *EntityService[D, E] {
	settings := deps.Settings
	if k.BatchSize > 0 {
		settings.BatchSize = k.BatchSize
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	dedup := deps.Dedup
	if dedup == nil {
		dedup = session.New()
	}
	return &EntityService[D, E]{
		kind:     k,
		client:   deps.Client,
		store:    deps.Store,
		repo:     database.NewRepository(deps.Store, k.Name, k.New),
		tracker:  tracker,
		dedup:    dedup,
		limiter:  deps.Limiter,
		database: deps.Databases[k.database()],
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Kind returns the entity kind.
func (s *EntityService[D, E]) Kind() models.Kind { return s.kind.Name }

// Depends returns the kinds synced on demand for missing relations.
func (s *EntityService[D, E]) Depends() []models.Kind { return s.kind.Depends }

// Configured reports whether the kind has a Notion database id.
func (s *EntityService[D, E]) Configured() bool { return s.database != "" }

// Repository exposes the service's typed repository.
func (s *EntityService[D, E]) Repository() *database.Repository[E] { return s.repo }

func (s *EntityService[D, E]) bind(reg registry) {
	s.reg = reg
}

func (s *EntityService[D, E]) label() string { return s.kind.Name.Label() }

func (s *EntityService[D, E]) logger(ctx context.Context, operationID string) zerolog.Logger {
	return logging.Ctx(ctx).With().
		Str("kind", string(s.kind.Name)).
		Str("operation_id", operationID).
		Logger()
}

// Inbound pulls new Notion pages of the kind into the local store.
func (s *EntityService[D, E]) Inbound(ctx context.Context, operationID string) SyncResult {
	name := s.label()
	key := string(s.kind.Name)
	log := s.logger(ctx, operationID)

	if s.dedup.IsSynced(key) {
		msg := name + " already synced in this session"
		log.Info().Msg("Kind already synced in this session, skipping")
		s.tracker.Start(operationID, name+" Sync", 1)
		s.tracker.Complete(operationID, true, msg, 0)
		return Success(name, 0, 0, 0).WithMessages(msg)
	}
	if !s.Configured() {
		s.tracker.Start(operationID, name+" Sync", 1)
		s.tracker.Fail(operationID, ErrRemoteNotConfigured.Error())
		return failureFrom(name, ErrRemoteNotConfigured.Error(), ErrRemoteNotConfigured)
	}

	log.Info().Msg("Starting inbound sync")
	start := time.Now()
	s.tracker.Start(operationID, name+" Sync", inboundSteps)
	msgs := newMessageLog(log, s.tracker, operationID)

	result := s.pull(ctx, operationID, newResolver(s.store, s.reg), msgs)
	s.finish(log, operationID, Inbound, start, result)

	if result.Success && result.ErrorCount == 0 {
		s.dedup.MarkSynced(key)
	}
	return result
}

// syncPages runs fetch, convert and save for ids without progress tracking
// or session bookkeeping. Resolver uses it for on-demand syncs.
func (s *EntityService[D, E]) syncPages(ctx context.Context, res *Resolver, ids []string) SyncResult {
	if !s.Configured() {
		return failureFrom(s.label(), ErrRemoteNotConfigured.Error(), ErrRemoteNotConfigured)
	}
	msgs := newMessageLog(s.logger(ctx, ""), nil, "")
	return s.process(ctx, "", res, msgs, ids)
}

func (s *EntityService[D, E]) pull(ctx context.Context, op string, res *Resolver, msgs *messageLog) SyncResult {
	name := s.label()

	s.step(op, stepLoadLocal, "Loading local records")
	local, err := s.repo.ExternalIDs(ctx)
	if err != nil {
		return failureFrom(name, "load local records: "+err.Error(), err)
	}

	s.step(op, stepQueryRemote, "Querying remote database")
	remote, err := s.client.ListPageIDs(ctx, s.database)
	if err != nil {
		return failureFrom(name, "query Notion database: "+err.Error(), err).WithMessages(msgs.list()...)
	}

	if len(remote) == 0 && s.kind.Defaults != nil {
		return s.ensureDefaults(ctx, res, msgs)
	}

	ids := batch.Delta(remote, local)
	msgs.log.Info().Int("remote", len(remote)).Int("local", len(local)).Int("new", len(ids)).Msg("Computed sync delta")
	if len(ids) == 0 {
		return Success(name, 0, 0, 0).WithMessages(fmt.Sprintf("No new %s to sync.", strings.ToLower(name)))
	}
	return s.process(ctx, op, res, msgs, ids)
}

type fetchedPage struct {
	page    *notion.Page
	content string
}

func (s *EntityService[D, E]) process(ctx context.Context, op string, res *Resolver, msgs *messageLog, ids []string) SyncResult {
	name := s.label()
	key := string(s.kind.Name)

	s.step(op, stepFetch, "Fetching pages")
	opts := s.batchOptions(op, msgs)
	opts.ProgressStep, opts.MessageTemplate, opts.Label = stepFetch, "Fetched", key+".fetch"
	pages := batch.Values(batch.Run(ctx, ids, s.fetch, opts))

	s.step(op, stepConvert, "Converting pages")
	opts.ProgressStep, opts.MessageTemplate, opts.Label = stepConvert, "Converted", key+".convert"
	dtos := batch.Values(batch.Run(ctx, pages, s.convert, opts))

	s.step(op, stepSave, "Saving entities")
	refs := newRefs(s.store, res, s.kind.Depends, msgs.add)
	created, updated := 0, 0
	for _, d := range dtos {
		if ctx.Err() != nil {
			break
		}
		isNew, err := s.save(ctx, refs, d)
		if err != nil {
			msgs.failure(d.Ident(), err)
			continue
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	failed := len(ids) - created - updated
	if err := ctx.Err(); err != nil {
		r := failureFrom(name, "sync canceled: "+err.Error(), err)
		r.CreatedCount, r.UpdatedCount, r.ErrorCount = created, updated, failed
		return r.WithMessages(msgs.list()...)
	}
	return Success(name, created, updated, failed).WithMessages(msgs.list()...)
}

func (s *EntityService[D, E]) fetch(ctx context.Context, id string) (fetchedPage, error) {
	page, err := s.client.GetPage(ctx, id)
	if err != nil {
		return fetchedPage{}, fmt.Errorf("fetch page %s: %w", id, err)
	}
	out := fetchedPage{page: page}
	if s.kind.NeedsContent {
		if out.content, err = s.client.GetPageContent(ctx, id); err != nil {
			return fetchedPage{}, fmt.Errorf("fetch content of page %s: %w", id, err)
		}
	}
	return out, nil
}

func (s *EntityService[D, E]) convert(_ context.Context, f fetchedPage) (D, error) {
	d, err := s.kind.ToDTO(f.page, f.content)
	if err != nil {
		return d, fmt.Errorf("convert page %s: %w", f.page.ID, err)
	}
	if err := dto.Validate(d); err != nil {
		return d, fmt.Errorf("convert page %s: %w", f.page.ID, err)
	}
	return d, nil
}

// save resolves identity, merges, applies relations and persists one DTO in
// its own store transaction. It reports whether a new entity was created.
func (s *EntityService[D, E]) save(ctx context.Context, refs *Refs, remote D) (bool, error) {
	var (
		existing E
		found    bool
		err      error
	)
	if s.kind.ResolveIdentity != nil {
		existing, found, err = s.kind.ResolveIdentity(ctx, refs, s.repo, remote)
	} else {
		existing, found, err = identify(ctx, s.repo, remote.Ident())
	}
	if err != nil {
		return false, fmt.Errorf("resolve identity: %w", err)
	}

	var prior D
	if found {
		if prior, err = s.kind.EntityToDTO(ctx, refs, existing); err != nil {
			return false, fmt.Errorf("load existing: %w", err)
		}
	} else {
		existing = s.kind.New()
	}

	merged := s.kind.Merge(prior, remote)
	if err := s.kind.ApplyToEntity(ctx, refs, merged, existing); err != nil {
		return false, err
	}

	id := merged.Ident()
	meta := existing.Meta()
	meta.ExternalID = id.ExternalID
	meta.Name = id.Name
	meta.LastSync = s.now()
	if err := s.repo.Save(ctx, existing); err != nil {
		return false, err
	}
	return !found, nil
}

// ensureDefaults creates the kind's default entities that do not exist by
// name yet.
func (s *EntityService[D, E]) ensureDefaults(ctx context.Context, res *Resolver, msgs *messageLog) SyncResult {
	name := s.label()
	refs := newRefs(s.store, res, s.kind.Depends, msgs.add)
	created := 0
	for _, d := range s.kind.Defaults() {
		_, found, err := s.repo.FindByName(ctx, d.Ident().Name)
		if err != nil {
			return failureFrom(name, "ensure defaults: "+err.Error(), err)
		}
		if found {
			continue
		}
		if _, err := s.save(ctx, refs, d); err != nil {
			return failureFrom(name, fmt.Sprintf("create default %q: %v", d.Ident().Name, err), err)
		}
		msgs.log.Info().Str("name", d.Ident().Name).Msg("Created default entity")
		created++
	}
	return Success(name, created, 0, 0).WithMessages(fmt.Sprintf("No %s found in Notion; ensured %d defaults.", strings.ToLower(name), created))
}

// Outbound pushes every local entity of the kind to Notion.
func (s *EntityService[D, E]) Outbound(ctx context.Context, operationID string) SyncResult {
	name := s.label()
	if s.kind.ToProperties == nil || s.kind.EntityToDTO == nil {
		return Unsupported(name)
	}
	if !s.Configured() {
		return failureFrom(name, ErrRemoteNotConfigured.Error(), ErrRemoteNotConfigured)
	}

	log := s.logger(ctx, operationID)
	log.Info().Msg("Starting outbound sync")
	start := time.Now()
	s.tracker.Start(operationID, name+" Push", outboundSteps)
	msgs := newMessageLog(log, s.tracker, operationID)

	result := s.push(ctx, operationID, msgs)
	s.finish(log, operationID, Outbound, start, result)
	return result
}

func (s *EntityService[D, E]) push(ctx context.Context, op string, msgs *messageLog) SyncResult {
	name := s.label()

	s.step(op, stepPushLoad, "Loading local records")
	entities, err := s.repo.FindAll(ctx)
	if err != nil {
		return failureFrom(name, "load local records: "+err.Error(), err)
	}

	s.step(op, stepPush, "Pushing to Notion")
	refs := newRefs(s.store, nil, nil, msgs.add)
	opts := s.batchOptions(op, msgs)
	opts.ProgressStep, opts.MessageTemplate, opts.Label = stepPush, "Pushed", string(s.kind.Name)+".push"
	outcomes := batch.Run(ctx, entities, func(ctx context.Context, e E) (bool, error) {
		return s.pushOne(ctx, refs, e)
	}, opts)

	created, updated := 0, 0
	for _, isNew := range batch.Values(outcomes) {
		if isNew {
			created++
		} else {
			updated++
		}
	}
	if failed := batch.Failures(outcomes); failed > 0 {
		r := Failure(name, fmt.Sprintf("%d of %d %s failed to push", failed, len(entities), strings.ToLower(name)))
		r.CreatedCount, r.UpdatedCount, r.ErrorCount = created, updated, failed
		return r.WithMessages(msgs.list()...)
	}
	return Success(name, created, updated, 0).WithMessages(msgs.list()...)
}

func (s *EntityService[D, E]) pushOne(ctx context.Context, refs *Refs, e E) (bool, error) {
	display := s.kind.display(e)
	d, err := s.kind.EntityToDTO(ctx, refs, e)
	if err != nil {
		return false, fmt.Errorf("render %s: %w", display, err)
	}
	props := s.kind.ToProperties(d)

	meta := e.Meta()
	created := meta.ExternalID == ""
	if created {
		pageID, err := s.client.CreatePage(ctx, s.database, props)
		if err != nil {
			return false, fmt.Errorf("create page for %s: %w", display, err)
		}
		meta.ExternalID = pageID
	} else if err := s.client.UpdatePage(ctx, meta.ExternalID, props); err != nil {
		return false, fmt.Errorf("update page for %s: %w", display, err)
	}

	meta.LastSync = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		return false, fmt.Errorf("save %s: %w", display, err)
	}
	return created, nil
}

func (s *EntityService[D, E]) batchOptions(op string, msgs *messageLog) batch.Options {
	opts := batch.Options{
		BatchSize:   s.settings.BatchSize,
		OperationID: op,
		Limiter:     s.limiter,
		ItemTimeout: s.settings.ItemTimeout,
		BatchPause:  s.settings.BatchPause,
		Messages:    msgs.add,
	}
	if op != "" {
		opts.Progress = s.tracker
	}
	return opts
}

func (s *EntityService[D, E]) step(op string, step int, message string) {
	if op != "" {
		s.tracker.Update(op, step, message)
	}
}

func (s *EntityService[D, E]) finish(log zerolog.Logger, op string, dir Direction, start time.Time, result SyncResult) {
	duration := time.Since(start)
	metrics.RecordSyncOperation(string(s.kind.Name), string(dir), duration,
		result.CreatedCount, result.UpdatedCount, result.ErrorCount, result.Err())
	s.tracker.Complete(op, result.Success, result.Summary(), result.Synced())

	event := log.Info()
	if !result.Success {
		event = log.Warn()
	}
	event.Str("direction", string(dir)).
		Int("created", result.CreatedCount).
		Int("updated", result.UpdatedCount).
		Int("errors", result.ErrorCount).
		Dur("duration", duration).
		Msg(result.Summary())
}

// messageLog collects the user-facing messages of one run and mirrors each
// into the log and the progress tracker.
type messageLog struct {
	log     zerolog.Logger
	tracker *progress.Tracker
	op      string

	mu    sync.Mutex
	lines []string
}

func newMessageLog(log zerolog.Logger, tracker *progress.Tracker, op string) *messageLog {
	return &messageLog{log: log, tracker: tracker, op: op}
}

func (m *messageLog) add(msg string) {
	m.mu.Lock()
	m.lines = append(m.lines, msg)
	m.mu.Unlock()

	m.log.Warn().Msg(msg)
	if m.tracker != nil && m.op != "" {
		m.tracker.AddLog(m.op, msg, progress.LevelWarning)
	}
}

func (m *messageLog) failure(id *dto.Identity, err error) {
	var skip *SkipError
	if errors.As(err, &skip) {
		m.add(skip.Reason)
		return
	}
	m.add(fmt.Sprintf("Failed to save %q (%s): %v", id.Name, id.ExternalID, err))
}

func (m *messageLog) list() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
