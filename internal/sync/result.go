// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"errors"
	"fmt"
)

// SyncResult is the outcome of one sync run of one kind.
type SyncResult struct {
	EntityName   string   `json:"entity_name"`
	Success      bool     `json:"success"`
	CreatedCount int      `json:"created_count"`
	UpdatedCount int      `json:"updated_count"`
	ErrorCount   int      `json:"error_count"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Messages     []string `json:"messages,omitempty"`

	cause error
}

// Success builds a successful result. errors counts skipped items.
func Success(name string, created, updated, errors int) SyncResult {
	return SyncResult{
		EntityName:   name,
		Success:      true,
		CreatedCount: created,
		UpdatedCount: updated,
		ErrorCount:   errors,
	}
}

// Failure builds a failed result.
func Failure(name, message string) SyncResult {
	return SyncResult{EntityName: name, ErrorMessage: message}
}

// Unsupported is the failure returned for directions a kind cannot run.
func Unsupported(name string) SyncResult {
	return Failure(name, "not supported")
}

func failureFrom(name, message string, cause error) SyncResult {
	r := Failure(name, message)
	r.cause = cause
	return r
}

// Synced returns created plus updated.
func (r SyncResult) Synced() int {
	return r.CreatedCount + r.UpdatedCount
}

// Summary renders the result on one line.
func (r SyncResult) Summary() string {
	if !r.Success {
		return fmt.Sprintf("%s: failed - %s", r.EntityName, r.ErrorMessage)
	}
	return fmt.Sprintf("%s: %d synced (%d created, %d updated), %d errors",
		r.EntityName, r.Synced(), r.CreatedCount, r.UpdatedCount, r.ErrorCount)
}

// WithMessages returns a copy of r with msgs appended.
func (r SyncResult) WithMessages(msgs ...string) SyncResult {
	out := r
	out.Messages = make([]string, 0, len(r.Messages)+len(msgs))
	out.Messages = append(out.Messages, r.Messages...)
	out.Messages = append(out.Messages, msgs...)
	return out
}

// Err returns nil for a successful result, else an error carrying the
// failure message and, when known, the underlying cause.
func (r SyncResult) Err() error {
	if r.Success {
		return nil
	}
	return &OperationError{Entity: r.EntityName, Message: r.ErrorMessage, Cause: r.cause}
}

// OperationError is the error form of a failed SyncResult.
type OperationError struct {
	Entity  string
	Message string
	Cause   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s sync failed: %s", e.Entity, e.Message)
}

func (e *OperationError) Unwrap() error { return e.Cause }

// ErrorType reports the cause's error type for metrics, "sync" otherwise.
func (e *OperationError) ErrorType() string {
	var classified interface{ ErrorType() string }
	if e.Cause != nil && errors.As(e.Cause, &classified) {
		return classified.ErrorType()
	}
	return "sync"
}
