// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example accepted sync:
//
//	{
//	  "status": "success",
//	  "data": {"operation_id": "wrestler-inbound-3f1c...", "entity": "wrestler", "direction": "inbound"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "ENTITY_DISABLED",
//	    "message": "sync disabled for entity \"npc\""
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the structured error body.
//
// Common error codes:
//   - VALIDATION_ERROR: unknown entity kind or direction
//   - ENTITY_DISABLED: the kind is switched off in configuration
//   - NOT_FOUND: unknown operation id
//   - RATE_LIMIT_EXCEEDED: too many trigger requests
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// SyncRequest is the validated form of a sync trigger.
type SyncRequest struct {
	Entity    string `json:"entity,omitempty" validate:"omitempty,entitykind"`
	Direction string `json:"direction" validate:"required,oneof=inbound outbound"`
}

// SyncAccepted is returned with 202 when a sync has been started.
type SyncAccepted struct {
	OperationID string `json:"operation_id"`
	Entity      string `json:"entity,omitempty"`
	Direction   string `json:"direction"`
}
