// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// registry finds the service of a kind and the lock that serializes its
// runs. Manager implements it.
type registry interface {
	Service(kind models.Kind) (Service, bool)
	kindLock(kind models.Kind) *sync.Mutex
}

// Resolver syncs referenced pages that are missing locally. Each
// (kind, page) pair is attempted at most once per Resolver, so one Resolver
// spans one top-level run.
type Resolver struct {
	store database.Store
	reg   registry

	mu        sync.Mutex
	attempted map[string]struct{}
}

// newResolver creates a resolver that finds services through reg. A nil reg
// disables on-demand syncs.
func newResolver(store database.Store, reg registry) *Resolver {
	return &Resolver{store: store, reg: reg, attempted: make(map[string]struct{})}
}

// Ensure returns the local id of the kind's entity linked to externalID,
// syncing that single page first when it is missing. The sync holds the
// kind's run lock, so it never overlaps a run of that kind. note receives
// user-facing progress messages.
func (r *Resolver) Ensure(ctx context.Context, kind models.Kind, externalID string, note func(string)) (int64, bool, error) {
	rec, found, err := r.store.ByExternalID(ctx, kind, externalID)
	if err != nil || found || r.reg == nil {
		return rec.ID, found, err
	}

	key := string(kind) + "/" + externalID
	r.mu.Lock()
	_, tried := r.attempted[key]
	r.attempted[key] = struct{}{}
	r.mu.Unlock()

	svc, ok := r.reg.Service(kind)
	if tried || !ok {
		return 0, false, nil
	}

	// Depends only names kinds registered earlier, so the caller's own
	// kind lock and this one are always taken in the same order.
	if lock := r.reg.kindLock(kind); lock != nil {
		lock.Lock()
		defer lock.Unlock()
	}
	rec, found, err = r.store.ByExternalID(ctx, kind, externalID)
	if err != nil || found {
		return rec.ID, found, err
	}

	note(fmt.Sprintf("%s page %s was not found locally. Attempting to sync it.", kind, externalID))
	result := svc.syncPages(ctx, r, []string{externalID})
	if !result.Success || result.Synced() == 0 {
		reason := result.ErrorMessage
		if reason == "" {
			reason = strings.Join(result.Messages, "; ")
		}
		note(fmt.Sprintf("Failed to sync %s page %s: %s", kind, externalID, reason))
	} else {
		logging.Ctx(ctx).Info().Str("kind", string(kind)).Str("external_id", externalID).Msg("Synced referenced page on demand")
	}

	rec, found, err = r.store.ByExternalID(ctx, kind, externalID)
	return rec.ID, found, err
}

// Refs maps relation page ids to local ids and back for one service run.
type Refs struct {
	store    database.Store
	resolver *Resolver
	ensure   map[models.Kind]bool
	note     func(string)
}

func newRefs(store database.Store, resolver *Resolver, depends []models.Kind, note func(string)) *Refs {
	ensure := make(map[models.Kind]bool, len(depends))
	for _, k := range depends {
		ensure[k] = true
	}
	if note == nil {
		note = func(string) {}
	}
	return &Refs{store: store, resolver: resolver, ensure: ensure, note: note}
}

// Lookup returns the local id linked to externalID. Kinds the running
// service depends on are synced on demand when missing.
func (r *Refs) Lookup(ctx context.Context, kind models.Kind, externalID string) (int64, bool, error) {
	if r.resolver != nil && r.ensure[kind] {
		return r.resolver.Ensure(ctx, kind, externalID, r.note)
	}
	rec, found, err := r.store.ByExternalID(ctx, kind, externalID)
	return rec.ID, found, err
}

// One resolves an optional single relation. A relation that surfaced as
// titles is matched by name. current is kept when ref is unresolved or
// empty, or when the page is not known locally.
func (r *Refs) One(ctx context.Context, kind models.Kind, ref notion.RelationRef, current *int64) (*int64, error) {
	if ref.Unresolved {
		return current, nil
	}
	if ref.First() == "" {
		return r.byName(ctx, kind, ref, current)
	}
	id, found, err := r.Lookup(ctx, kind, ref.First())
	if err != nil {
		return current, err
	}
	if !found {
		r.note(fmt.Sprintf("%s page %s is not synced yet; keeping the existing link", kind, ref.First()))
		return current, nil
	}
	return &id, nil
}

func (r *Refs) byName(ctx context.Context, kind models.Kind, ref notion.RelationRef, current *int64) (*int64, error) {
	if len(ref.Names) == 0 {
		return current, nil
	}
	rec, found, err := r.store.ByName(ctx, kind, ref.Names[0])
	if err != nil {
		return current, err
	}
	if !found {
		r.note(fmt.Sprintf("%s %q is not synced yet; keeping the existing link", kind, ref.Names[0]))
		return current, nil
	}
	return &rec.ID, nil
}

// Required resolves a mandatory single relation. current (when non-zero) is
// kept for an unresolved or empty ref; otherwise a missing page is an
// ErrMissingReference.
func (r *Refs) Required(ctx context.Context, kind models.Kind, ref notion.RelationRef, current int64) (int64, error) {
	if ref.Unresolved || ref.First() == "" {
		if current != 0 {
			return current, nil
		}
		return 0, fmt.Errorf("%w: no %s relation", ErrMissingReference, kind)
	}
	id, found, err := r.Lookup(ctx, kind, ref.First())
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: %s page %s", ErrMissingReference, kind, ref.First())
	}
	return id, nil
}

// Many resolves a multi relation. Pages not known locally are dropped with a
// message; current is kept for an unresolved or empty ref.
func (r *Refs) Many(ctx context.Context, kind models.Kind, ref notion.RelationRef, current []int64) ([]int64, error) {
	if ref.Unresolved || len(ref.IDs) == 0 {
		return current, nil
	}
	out := make([]int64, 0, len(ref.IDs))
	for _, ext := range ref.IDs {
		id, found, err := r.Lookup(ctx, kind, ext)
		if err != nil {
			return current, err
		}
		if !found {
			r.note(fmt.Sprintf("%s page %s is not synced yet; skipping it", kind, ext))
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// Ref renders local ids of kind as a relation of page ids. Entities that
// are not linked to a page yet are left out.
func (r *Refs) Ref(ctx context.Context, kind models.Kind, ids ...int64) (notion.RelationRef, error) {
	external := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		rec, found, err := r.store.ByID(ctx, kind, id)
		if err != nil {
			return notion.RelationRef{}, err
		}
		if found {
			external = append(external, rec.ExternalID)
		}
	}
	return dto.Ref(external...), nil
}

// RefPtr is Ref for an optional id.
func (r *Refs) RefPtr(ctx context.Context, kind models.Kind, id *int64) (notion.RelationRef, error) {
	if id == nil {
		return notion.RelationRef{}, nil
	}
	return r.Ref(ctx, kind, *id)
}
