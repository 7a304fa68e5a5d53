// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package dto converts decoded Notion pages into per-kind transfer objects
// and merges them with the transfer form of an existing local entity.
//
// Conversion (XxxFromPage) reads properties through the tolerant
// extractors in package notion, so a malformed property yields an absent
// field rather than an error. Only a missing page or page id fails.
//
// Merging (MergeXxx) never loses data: ExternalID and Name always come
// from the remote side; every other field takes the remote value only when
// it is present and non-blank, otherwise the existing value, otherwise the
// kind's documented default. Relations that Notion reported only as a count
// are Unresolved and never overwrite a known local relation.
package dto
