// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package sync moves entities between Notion databases and the local store.

Every entity kind is described by a Kind capability table (converter,
merger, identity resolution, relation mapping, property builder) and run by
the same generic EntityService. The Manager owns one service per kind and
adds per-kind enable flags, dependency ordered full runs, health tracking
and scheduling.

Inbound Pipeline:

 1. Skip when the kind was already synced in this session.
 2. Load local external ids and list the remote database.
 3. Compute the delta (remote ids not known locally).
 4. Fetch the new pages in bounded batches.
 5. Convert and validate them into DTOs.
 6. Resolve identity (external id, then natural key, else create), merge
    with the existing record, resolve relations and save each entity.
 7. Aggregate counts into a SyncResult.

A relation that points at a page missing locally triggers a one-off sync of
that page through the referenced kind's service before it is given up on.
Items that fail at any step are skipped, counted and reported in
SyncResult.Messages; only operation level failures fail the result.

Outbound Pipeline:

Every local entity is rendered to Notion properties and pushed with
CreatePage (no external id yet) or UpdatePage. LastSync is stamped on
success. Any failed entity fails the whole result.

Thread Safety:

Services are safe for concurrent use. The Manager serializes runs of the
same kind and runs independent kinds of a full sync in parallel.
*/
package sync
