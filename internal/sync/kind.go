// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// Kind is the capability table of one entity kind. D is the DTO pointer
// type and E the local entity pointer type.
type Kind[D dto.Record, E models.Entity] struct {
	Name models.Kind
	// Database is the key in notion.databases; empty means Name.
	Database string
	// New allocates an empty entity.
	New func() E
	// DisplayName names an entity in logs and messages; nil means its Name.
	DisplayName func(E) string

	// ToDTO converts a fetched page and its body text.
	ToDTO func(page *notion.Page, content string) (D, error)
	// Merge combines the existing DTO (nil when creating) with a converted
	// page.
	Merge func(existing, remote D) D
	// EntityToDTO renders a local entity with relations as page ids.
	EntityToDTO func(ctx context.Context, refs *Refs, e E) (D, error)
	// ResolveIdentity finds the local entity a DTO belongs to. Nil means
	// external id, then name.
	ResolveIdentity func(ctx context.Context, refs *Refs, repo *database.Repository[E], d D) (E, bool, error)
	// ApplyToEntity copies a merged DTO into e, resolving relations to
	// local ids.
	ApplyToEntity func(ctx context.Context, refs *Refs, d D, e E) error
	// ToProperties builds the Notion properties pushed by outbound sync.
	// Nil makes outbound sync unsupported.
	ToProperties func(d D) map[string]notion.Property

	// NeedsContent fetches the page body along with its properties.
	NeedsContent bool
	// BatchSize overrides the configured batch size when positive.
	BatchSize int
	// Depends lists the kinds whose missing pages are synced on demand.
	Depends []models.Kind
	// Defaults are created by name when the remote database has no pages.
	Defaults func() []D
}

func (k Kind[D, E]) database() string {
	if k.Database != "" {
		return k.Database
	}
	return string(k.Name)
}

func (k Kind[D, E]) display(e E) string {
	if k.DisplayName != nil {
		return k.DisplayName(e)
	}
	return e.Meta().Name
}

// identify is the default identity resolution: external id, then name.
// A name match that is already linked to a different page is not reused.
func identify[E models.Entity](ctx context.Context, repo *database.Repository[E], id *dto.Identity) (E, bool, error) {
	var zero E
	if id.ExternalID != "" {
		e, found, err := repo.FindByExternalID(ctx, id.ExternalID)
		if err != nil || found {
			return e, found, err
		}
	}
	if id.Name == "" {
		return zero, false, nil
	}
	e, found, err := repo.FindByName(ctx, id.Name)
	if err != nil || !found {
		return zero, false, err
	}
	if linked := e.Meta().ExternalID; linked != "" && linked != id.ExternalID {
		return zero, false, nil
	}
	return e, true, nil
}
