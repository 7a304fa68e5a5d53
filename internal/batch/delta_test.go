// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package batch

import (
	"math/rand"
	"reflect"
	"strconv"
	"testing"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name   string
		remote []string
		local  []string
		want   []string
	}{
		{"empty local", []string{"r1", "r2"}, nil, []string{"r1", "r2"}},
		{"all known", []string{"r1", "r2"}, []string{"r2", "r1"}, []string{}},
		{"partial", []string{"r1", "r2", "r3"}, []string{"r2"}, []string{"r1", "r3"}},
		{"local extras ignored", []string{"r1"}, []string{"x", "y"}, []string{"r1"}},
		{"duplicates and blanks", []string{"r1", "", "r1", "r2"}, []string{""}, []string{"r1", "r2"}},
		{"empty remote", nil, []string{"r1"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.remote, tt.local); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Delta() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDelta_SetDifference checks delta(R, L) == R \ L and delta(R, R) == {}
// over random sets.
func TestDelta_SetDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		remote := randomIDs(rng)
		local := randomIDs(rng)

		inLocal := map[string]bool{}
		for _, id := range local {
			inLocal[id] = true
		}
		got := Delta(remote, local)
		gotSet := map[string]bool{}
		for _, id := range got {
			if inLocal[id] {
				t.Fatalf("round %d: %s is local but returned", round, id)
			}
			gotSet[id] = true
		}
		for _, id := range remote {
			if !inLocal[id] && !gotSet[id] {
				t.Fatalf("round %d: %s missing from delta", round, id)
			}
		}

		if self := Delta(remote, remote); len(self) != 0 {
			t.Fatalf("round %d: delta(R, R) = %v", round, self)
		}
	}
}

func randomIDs(rng *rand.Rand) []string {
	n := rng.Intn(20)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "p" + strconv.Itoa(rng.Intn(30))
	}
	return ids
}
