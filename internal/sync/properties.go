// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/notion"
)

// propertySet builds outbound page properties. Blank values are left out
// so a push never clears a cell the local side knows nothing about.
type propertySet map[string]notion.Property

func newProperties(name string) propertySet {
	return propertySet{dto.PropName: notion.Title{Text: name}}
}

func (p propertySet) text(key, v string) propertySet {
	if strings.TrimSpace(v) != "" {
		p[key] = notion.RichText{Text: v}
	}
	return p
}

func (p propertySet) choice(key, v string) propertySet {
	if strings.TrimSpace(v) != "" {
		p[key] = notion.Select{Name: v}
	}
	return p
}

func (p propertySet) integer(key string, v *int) propertySet {
	if v != nil {
		p[key] = notion.NumberOf(float64(*v))
	}
	return p
}

func (p propertySet) integer64(key string, v *int64) propertySet {
	if v != nil {
		p[key] = notion.NumberOf(float64(*v))
	}
	return p
}

func (p propertySet) check(key string, v *bool) propertySet {
	if v != nil {
		p[key] = notion.Checkbox{Checked: *v}
	}
	return p
}

func (p propertySet) date(key string, t *time.Time) propertySet {
	if t != nil && !t.IsZero() {
		p[key] = notion.DateOf(*t)
	}
	return p
}

func (p propertySet) relation(key string, ref notion.RelationRef) propertySet {
	if !ref.Unresolved && len(ref.IDs) > 0 {
		p[key] = notion.Relation{IDs: append([]string(nil), ref.IDs...)}
	}
	return p
}

func (p propertySet) build() map[string]notion.Property {
	return p
}
