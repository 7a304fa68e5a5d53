// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/validation"
)

// Property names shared by several kinds.
const (
	PropName        = "Name"
	PropDescription = "Description"
	PropActive      = "Active"
	PropGender      = "Gender"
	PropDate        = "Date"
	PropStartDate   = "Start Date"
	PropEndDate     = "End Date"
)

// ErrNoPage is returned when a converter receives a nil page or a page
// without an id.
var ErrNoPage = errors.New("page has no id")

// Identity holds the fields every DTO shares.
type Identity struct {
	ExternalID string `json:"external_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
}

// Ident returns the identity of the embedding DTO.
func (i *Identity) Ident() *Identity { return i }

// Record is implemented by pointers to every DTO type.
type Record interface {
	Ident() *Identity
}

// Validate checks the struct rules of a converted DTO.
func Validate(r Record) error {
	if err := validation.ValidateStruct(r); err != nil {
		return fmt.Errorf("invalid %T %q: %w", r, r.Ident().Name, err)
	}
	return nil
}

func identityOf(page *notion.Page) (Identity, error) {
	if page == nil || strings.TrimSpace(page.ID) == "" {
		return Identity{}, ErrNoPage
	}
	return Identity{ExternalID: page.ID, Name: notion.Name(page)}, nil
}

func mergeIdentity(remote Identity) Identity {
	return Identity{ExternalID: remote.ExternalID, Name: remote.Name}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func pickString(remote, existing, def string) string {
	if strings.TrimSpace(remote) != "" {
		return remote
	}
	if strings.TrimSpace(existing) != "" {
		return existing
	}
	return def
}

func pick[T any](remote, existing *T, def *T) *T {
	switch {
	case remote != nil:
		return Ptr(*remote)
	case existing != nil:
		return Ptr(*existing)
	case def != nil:
		return Ptr(*def)
	}
	return nil
}

// pickRelation keeps existing unless remote carries resolved ids or names. With no
// existing value the remote reference, possibly unresolved, is returned.
func pickRelation(remote, existing notion.RelationRef) notion.RelationRef {
	if !remote.Unresolved && (len(remote.IDs) > 0 || len(remote.Names) > 0) {
		return cloneRef(remote)
	}
	if len(existing.IDs) > 0 {
		return cloneRef(existing)
	}
	return cloneRef(remote)
}

func cloneRef(r notion.RelationRef) notion.RelationRef {
	out := notion.RelationRef{Unresolved: r.Unresolved}
	if r.IDs != nil {
		out.IDs = append([]string(nil), r.IDs...)
	}
	if r.Names != nil {
		out.Names = append([]string(nil), r.Names...)
	}
	return out
}

func optInt(page *notion.Page, key string) *int {
	if v, ok := notion.Int(page, key); ok {
		return &v
	}
	return nil
}

func optInt64(page *notion.Page, key string) *int64 {
	if v, ok := notion.Int64(page, key); ok {
		return &v
	}
	return nil
}

func optBool(page *notion.Page, key string) *bool {
	if v, ok := notion.Bool(page, key); ok {
		return &v
	}
	return nil
}

func optTime(page *notion.Page, key string) *time.Time {
	if v, ok := notion.DateValue(page, key); ok {
		return &v
	}
	return nil
}

// Ref builds a resolved relation reference from external ids, skipping blanks.
func Ref(ids ...string) notion.RelationRef {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return notion.RelationRef{}
	}
	return notion.RelationRef{IDs: out}
}
