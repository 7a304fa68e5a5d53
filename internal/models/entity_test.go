// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"wrestler", KindWrestler, true},
		{"show_type", KindShowType, true},
		{"title_reign", KindTitleReign, true},
		{"Wrestler", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAllKinds_Complete(t *testing.T) {
	if len(AllKinds) != 13 {
		t.Fatalf("len(AllKinds) = %d, want 13", len(AllKinds))
	}
	seen := map[Kind]bool{}
	for _, k := range AllKinds {
		if seen[k] {
			t.Errorf("duplicate kind %q", k)
		}
		seen[k] = true
		if k.Label() == string(k) {
			t.Errorf("kind %q has no label", k)
		}
	}
}

func TestEntities_ImplementEntity(t *testing.T) {
	entities := []Entity{
		&Wrestler{}, &Show{}, &Title{}, &Segment{}, &Faction{}, &Rivalry{}, &Team{},
		&Season{}, &ShowType{}, &ShowTemplate{}, &NPC{}, &Injury{}, &TitleReign{},
	}
	seen := map[Kind]bool{}
	for _, e := range entities {
		seen[e.Kind()] = true
		e.Meta().Name = "x"
		if e.Meta().Name != "x" {
			t.Errorf("%s: Meta does not alias the embedded Base", e.Kind())
		}
	}
	for _, k := range AllKinds {
		if !seen[k] {
			t.Errorf("no entity type for kind %q", k)
		}
	}
}
