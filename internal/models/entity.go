// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import (
	"time"
)

// Kind identifies an entity type.
type Kind string

// Entity kinds.
const (
	KindWrestler     Kind = "wrestler"
	KindShow         Kind = "show"
	KindTitle        Kind = "title"
	KindSegment      Kind = "segment"
	KindFaction      Kind = "faction"
	KindRivalry      Kind = "rivalry"
	KindTeam         Kind = "team"
	KindSeason       Kind = "season"
	KindShowType     Kind = "show_type"
	KindShowTemplate Kind = "show_template"
	KindNPC          Kind = "npc"
	KindInjury       Kind = "injury"
	KindTitleReign   Kind = "title_reign"
)

// AllKinds lists every kind in full-sync dependency order: a kind appears
// after every kind it references.
var AllKinds = []Kind{
	KindSeason,
	KindShowType,
	KindShowTemplate,
	KindWrestler,
	KindNPC,
	KindFaction,
	KindTeam,
	KindInjury,
	KindTitle,
	KindShow,
	KindTitleReign,
	KindRivalry,
	KindSegment,
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label returns the plural display label used in results and progress
// ("Wrestlers", "Show Types").
func (k Kind) Label() string {
	switch k {
	case KindWrestler:
		return "Wrestlers"
	case KindShow:
		return "Shows"
	case KindTitle:
		return "Titles"
	case KindSegment:
		return "Segments"
	case KindFaction:
		return "Factions"
	case KindRivalry:
		return "Rivalries"
	case KindTeam:
		return "Teams"
	case KindSeason:
		return "Seasons"
	case KindShowType:
		return "Show Types"
	case KindShowTemplate:
		return "Show Templates"
	case KindNPC:
		return "NPCs"
	case KindInjury:
		return "Injury Types"
	case KindTitleReign:
		return "Title Reigns"
	default:
		return string(k)
	}
}

// Entity is implemented by pointers to every local entity type.
type Entity interface {
	Meta() *Base
	Kind() Kind
}

// Base is embedded by every entity.
//
// ExternalID is the Notion page id; it is empty until the entity has been
// synced in either direction. Name is the natural key used when no
// ExternalID match exists.
type Base struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	Name       string    `json:"name"`
	LastSync   time.Time `json:"last_sync"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Meta returns b itself so embedding structs satisfy Entity.
func (b *Base) Meta() *Base { return b }

// Synced reports whether the entity is linked to a Notion page.
func (b *Base) Synced() bool { return b.ExternalID != "" }
