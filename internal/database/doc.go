// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package database persists local entities in DuckDB.

Every entity kind lives in one table, entities, keyed by (kind, id). The
identity columns used by the sync engine (external_id, name, last_sync)
are real columns with indexes; the rest of the entity is a JSON payload
encoded with goccy/go-json. Schema changes go through versioned
migrations recorded in schema_migrations.

Key Components:

  - DB: DuckDB connection, pool tuning and migrations
  - Store: kind-agnostic row access, implemented by *DB and *MemoryStore
  - Repository[E]: typed access for one entity kind on top of a Store

Every Save runs in its own transaction. A lookup by external id that
matches more than one row logs a warning and returns the lowest id.

Example:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	wrestlers := database.NewRepository(db, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} })
	w, found, err := wrestlers.FindByExternalID(ctx, pageID)
*/
package database
