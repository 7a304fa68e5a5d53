// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// correlationIDKey carries the sync operation id through a run.
	correlationIDKey contextKey = "correlation_id"

	requestIDKey contextKey = "request_id"

	// entityKindKey tags log lines with the entity kind being synced.
	entityKindKey contextKey = "entity_kind"
)

// GenerateCorrelationID returns a short id for tying log lines together.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID for an HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID stores id on ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithEntityKind tags ctx with the entity kind under sync.
func ContextWithEntityKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, entityKindKey, kind)
}

func EntityKindFromContext(ctx context.Context) string {
	if kind, ok := ctx.Value(entityKindKey).(string); ok {
		return kind
	}
	return ""
}

// Ctx returns a logger carrying the correlation id, request id and entity
// kind stored on ctx.
//
//	logging.Ctx(ctx).Info().Int("created", n).Msg("Wrestler sync finished")
func Ctx(ctx context.Context) *zerolog.Logger {
	fields := [...]struct{ key, value string }{
		{"correlation_id", CorrelationIDFromContext(ctx)},
		{"request_id", RequestIDFromContext(ctx)},
		{"entity_kind", EntityKindFromContext(ctx)},
	}
	logCtx := With()
	for _, f := range fields {
		if f.value != "" {
			logCtx = logCtx.Str(f.key, f.value)
		}
	}
	logger := logCtx.Logger()
	return &logger
}

// WithComponent returns a child logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
