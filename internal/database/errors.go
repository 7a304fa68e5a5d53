// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/atwsync/internal/logging"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("database is closed")

	// ErrExternalIDTaken is returned by Save when another row of the same
	// kind is already linked to the record's external id.
	ErrExternalIDTaken = errors.New("external id already linked to another row")
)

// QueryError wraps a failed statement with the operation and kind that
// issued it.
type QueryError struct {
	Op   string
	Kind string
	Err  error
}

func (e *QueryError) Error() string {
	return "database " + e.Op + " " + e.Kind + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// ErrorType classifies the error for metrics.
func (e *QueryError) ErrorType() string { return "database" }

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
