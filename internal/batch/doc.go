// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package batch runs per-item work with bounded parallelism and computes
// which remote ids still need fetching.
//
// Run splits items into batches of Options.BatchSize, runs each batch on
// an errgroup limited to the same size, and reports progress once per
// batch. Item failures and panics are captured in the returned outcomes.
package batch
