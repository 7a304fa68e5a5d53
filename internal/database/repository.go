// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package database

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/models"
)

// Repository gives typed access to one entity kind.
//
// Identity columns (id, external_id, name, last_sync, timestamps) are the
// source of truth on read; the payload supplies every other field.
type Repository[E models.Entity] struct {
	store Store
	kind  models.Kind
	newFn func() E
}

// NewRepository creates a repository for kind. newFn returns a fresh,
// non-nil entity to decode into.
func NewRepository[E models.Entity](store Store, kind models.Kind, newFn func() E) *Repository[E] {
	return &Repository[E]{store: store, kind: kind, newFn: newFn}
}

// Kind returns the entity kind served by the repository.
func (r *Repository[E]) Kind() models.Kind { return r.kind }

// Store returns the underlying store.
func (r *Repository[E]) Store() Store { return r.store }

// FindAll returns every entity ordered by id.
func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	records, err := r.store.All(ctx, r.kind)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(records))
	for _, rec := range records {
		e, err := r.decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// FindByID returns the entity with the local id.
func (r *Repository[E]) FindByID(ctx context.Context, id int64) (E, bool, error) {
	return r.one(r.store.ByID(ctx, r.kind, id))
}

// FindByExternalID returns the entity linked to a Notion page id.
func (r *Repository[E]) FindByExternalID(ctx context.Context, externalID string) (E, bool, error) {
	return r.one(r.store.ByExternalID(ctx, r.kind, externalID))
}

// FindByName returns the entity with the natural key name.
func (r *Repository[E]) FindByName(ctx context.Context, name string) (E, bool, error) {
	return r.one(r.store.ByName(ctx, r.kind, name))
}

// ExternalIDs returns every known Notion page id of the kind.
func (r *Repository[E]) ExternalIDs(ctx context.Context) ([]string, error) {
	return r.store.ExternalIDs(ctx, r.kind)
}

// Save persists e and writes the assigned id and timestamps back into it.
func (r *Repository[E]) Save(ctx context.Context, e E) error {
	meta := e.Meta()
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", r.kind, meta.Name, err)
	}
	saved, err := r.store.Save(ctx, Record{
		Kind:       r.kind,
		ID:         meta.ID,
		ExternalID: meta.ExternalID,
		Name:       meta.Name,
		Payload:    payload,
		LastSync:   meta.LastSync,
		CreatedAt:  meta.CreatedAt,
	})
	if err != nil {
		return err
	}
	meta.ID = saved.ID
	meta.UpdatedAt = saved.UpdatedAt
	if !saved.CreatedAt.IsZero() {
		meta.CreatedAt = saved.CreatedAt
	}
	return nil
}

func (r *Repository[E]) one(rec Record, found bool, err error) (E, bool, error) {
	var zero E
	if err != nil || !found {
		return zero, false, err
	}
	e, err := r.decode(rec)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

func (r *Repository[E]) decode(rec Record) (E, error) {
	e := r.newFn()
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, e); err != nil {
			var zero E
			return zero, fmt.Errorf("decode %s %d: %w", r.kind, rec.ID, err)
		}
	}
	meta := e.Meta()
	meta.ID = rec.ID
	meta.ExternalID = rec.ExternalID
	meta.Name = rec.Name
	meta.LastSync = rec.LastSync
	meta.CreatedAt = rec.CreatedAt
	meta.UpdatedAt = rec.UpdatedAt
	return e, nil
}
