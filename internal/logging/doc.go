// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package logging provides centralized zerolog-based structured logging for ATW Sync.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger with JSON (production) or console (development) output
//   - An optional rotating log file via lumberjack
//   - Context-aware logging that carries the sync operation id and entity kind
//   - A slog handler for the Suture supervisor event hook
//   - A watermill LoggerAdapter for the event publisher
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	ctx = logging.ContextWithCorrelationID(ctx, operationID)
//	ctx = logging.ContextWithEntityKind(ctx, "wrestler")
//	logging.Ctx(ctx).Info().Int("created", 2).Msg("Inbound sync finished")
//
// # Configuration
//
// Environment variables (through the config package):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//	LOG_FILE    - path of a rotating JSON log file (default: none)
//
// Always terminate log chains with .Msg() or .Send().
package logging
