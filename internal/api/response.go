// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
)

// Error codes for API responses
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeEntityDisabled = "ENTITY_DISABLED"
	ErrCodeNotConfigured  = "NOT_CONFIGURED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrCodeInternal       = "INTERNAL_ERROR"
	statusSuccess         = "success"
	statusError           = "error"
)

// ResponseWriter writes models.APIResponse envelopes.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

func (rw *ResponseWriter) metadata() models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		RequestID:   logging.RequestIDFromContext(rw.r.Context()),
	}
}

// JSON writes data with the given status code.
func (rw *ResponseWriter) JSON(statusCode int, data any) {
	rw.writeJSON(statusCode, models.APIResponse{
		Status:   statusSuccess,
		Data:     data,
		Metadata: rw.metadata(),
	})
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data any) {
	rw.JSON(http.StatusOK, data)
}

// Accepted writes a 202 response with data.
func (rw *ResponseWriter) Accepted(data any) {
	rw.JSON(http.StatusAccepted, data)
}

// Error writes an error envelope.
func (rw *ResponseWriter) Error(statusCode int, code, message string, details map[string]any) {
	rw.writeJSON(statusCode, models.APIResponse{
		Status:   statusError,
		Error:    &models.APIError{Code: code, Message: message, Details: details},
		Metadata: rw.metadata(),
	})
}

// BadRequest writes a 400 validation error.
func (rw *ResponseWriter) BadRequest(message string, details map[string]any) {
	rw.Error(http.StatusBadRequest, ErrCodeValidation, message, details)
}

// NotFound writes a 404 error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message, nil)
}

// InternalError logs err and writes a 500 without leaking it.
func (rw *ResponseWriter) InternalError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Internal error")
	rw.Error(http.StatusInternalServerError, ErrCodeInternal, "An internal error occurred", nil)
}

func (rw *ResponseWriter) writeJSON(statusCode int, body models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
