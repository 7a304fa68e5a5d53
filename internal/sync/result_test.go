// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"errors"
	"testing"
)

func TestSyncResult_Summary(t *testing.T) {
	tests := []struct {
		name   string
		result SyncResult
		want   string
	}{
		{"success", Success("Wrestlers", 2, 1, 0), "Wrestlers: 3 synced (2 created, 1 updated), 0 errors"},
		{"failure", Failure("Shows", "boom"), "Shows: failed - boom"},
		{"unsupported", Unsupported("Seasons"), "Seasons: failed - not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSyncResult_WithMessagesCopies(t *testing.T) {
	base := Success("Titles", 0, 0, 0).WithMessages("a")
	next := base.WithMessages("b")
	if len(base.Messages) != 1 || len(next.Messages) != 2 {
		t.Errorf("base=%v next=%v", base.Messages, next.Messages)
	}
}

func TestSyncResult_Err(t *testing.T) {
	if err := Success("x", 1, 0, 0).Err(); err != nil {
		t.Errorf("Err() = %v for success", err)
	}
	err := failureFrom("Seasons", "no db", ErrRemoteNotConfigured).Err()
	if !errors.Is(err, ErrRemoteNotConfigured) {
		t.Errorf("Err() = %v, want wrapping ErrRemoteNotConfigured", err)
	}
	var op *OperationError
	if !errors.As(err, &op) || op.ErrorType() != "sync" {
		t.Errorf("ErrorType = %v", op)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", Inbound, false},
		{"inbound", Inbound, false},
		{"outbound", Outbound, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("error %v is not ErrInvalidDirection", err)
		}
	}
}
