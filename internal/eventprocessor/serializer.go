// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/atwsync/internal/progress"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
	"github.com/tomtom215/atwsync/internal/validation"
)

// EventType names a sync lifecycle event.
type EventType string

const (
	EventStarted   EventType = "sync.started"
	EventProgress  EventType = "sync.progress"
	EventCompleted EventType = "sync.completed"
	EventResult    EventType = "sync.result"
)

// SyncEvent is the payload of every published message.
type SyncEvent struct {
	EventID     string                 `json:"event_id" validate:"required"`
	Type        EventType              `json:"type" validate:"required,oneof=sync.started sync.progress sync.completed sync.result"`
	OperationID string                 `json:"operation_id" validate:"required"`
	Direction   string                 `json:"direction,omitempty"`
	Progress    *progress.SyncProgress `json:"progress,omitempty"`
	Result      *atwsync.SyncResult    `json:"result,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// NewProgressEvent wraps a progress snapshot.
func NewProgressEvent(t EventType, p progress.SyncProgress) *SyncEvent {
	return &SyncEvent{
		EventID:     uuid.NewString(),
		Type:        t,
		OperationID: p.OperationID,
		Progress:    &p,
		Timestamp:   time.Now().UTC(),
	}
}

// NewResultEvent wraps the result of one entity kind.
func NewResultEvent(operationID string, dir atwsync.Direction, r atwsync.SyncResult) *SyncEvent {
	return &SyncEvent{
		EventID:     uuid.NewString(),
		Type:        EventResult,
		OperationID: operationID,
		Direction:   string(dir),
		Result:      &r,
		Timestamp:   time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *SyncEvent) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return verr
	}
	return nil
}

// Topic returns the subject for this event under prefix.
func (e *SyncEvent) Topic(prefix string) string {
	if prefix == "" {
		return string(e.Type)
	}
	return prefix + "." + string(e.Type)
}

// SerializeEvent validates and encodes an event.
func SerializeEvent(event *SyncEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent decodes an event.
func DeserializeEvent(data []byte) (*SyncEvent, error) {
	var event SyncEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
