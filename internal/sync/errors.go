// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned for an entity kind with no registered service.
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrEntityDisabled is returned when sync of a kind is switched off.
	ErrEntityDisabled = errors.New("entity sync disabled")
	// ErrRemoteNotConfigured is returned when no Notion database id is
	// configured for a kind.
	ErrRemoteNotConfigured = errors.New("notion database not configured")
	// ErrInvalidDirection is returned for a direction other than inbound or
	// outbound.
	ErrInvalidDirection = errors.New("invalid sync direction")
	// ErrMissingReference marks an entity whose required relation could not
	// be resolved locally.
	ErrMissingReference = errors.New("referenced entity not found")
	// ErrManagerClosed is returned by Start after Close.
	ErrManagerClosed = errors.New("sync manager closed")
)

// Direction selects which side is the source of truth for a run.
type Direction string

const (
	// Inbound pulls Notion pages into the local store.
	Inbound Direction = "inbound"
	// Outbound pushes local entities to Notion.
	Outbound Direction = "outbound"
)

// ParseDirection parses "inbound" or "outbound". An empty string means
// Inbound.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Inbound:
		return Inbound, nil
	case Outbound:
		return Outbound, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// SkipError marks an item that was deliberately not saved. Its message is
// reported verbatim.
type SkipError struct {
	Reason string
	Cause  error
}

func (e *SkipError) Error() string { return e.Reason }

func (e *SkipError) Unwrap() error { return e.Cause }

func skipf(cause error, format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...), Cause: cause}
}
