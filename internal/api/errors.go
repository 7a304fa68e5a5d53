// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"errors"
	"net/http"

	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

// writeSyncError maps engine request errors to HTTP statuses.
func writeSyncError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, atwsync.ErrUnknownKind), errors.Is(err, atwsync.ErrInvalidDirection):
		rw.BadRequest(err.Error(), nil)
	case errors.Is(err, atwsync.ErrEntityDisabled):
		rw.Error(http.StatusConflict, ErrCodeEntityDisabled, err.Error(), nil)
	case errors.Is(err, atwsync.ErrRemoteNotConfigured):
		rw.Error(http.StatusConflict, ErrCodeNotConfigured, err.Error(), nil)
	case errors.Is(err, atwsync.ErrManagerClosed):
		rw.Error(http.StatusServiceUnavailable, ErrCodeUnavailable, "sync engine is shutting down", nil)
	default:
		rw.InternalError(err)
	}
}
