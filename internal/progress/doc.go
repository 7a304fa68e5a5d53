// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package progress tracks running sync operations for status polling and
// the live websocket stream. Finished operations leave the live map after
// a TTL and remain readable through an optional HistoryStore (BadgerDB in
// production).
package progress
