// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package narration wraps text generation providers (Google Gemini and
// Anthropic Claude) behind one Provider interface.
//
// A Chain orders providers by the priority table in config.NarrationConfig
// and falls back to the next provider when one fails. The sync engine uses
// Chain.Summarize to condense segment narration during inbound sync.
package narration
