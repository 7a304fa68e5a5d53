// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
	"github.com/tomtom215/atwsync/internal/models"
)

// Record is one stored entity: identity columns plus the encoded payload.
type Record struct {
	Kind       models.Kind
	ID         int64
	ExternalID string
	Name       string
	Payload    []byte
	LastSync   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store is kind-agnostic row access shared by every Repository.
// The found result is false, with a nil error, when no row matches.
type Store interface {
	All(ctx context.Context, kind models.Kind) ([]Record, error)
	ByID(ctx context.Context, kind models.Kind, id int64) (Record, bool, error)
	ByExternalID(ctx context.Context, kind models.Kind, externalID string) (Record, bool, error)
	ByName(ctx context.Context, kind models.Kind, name string) (Record, bool, error)
	ExternalIDs(ctx context.Context, kind models.Kind) ([]string, error)
	Count(ctx context.Context, kind models.Kind) (int, error)
	// Save inserts a record with ID 0 under a new id, or replaces the row
	// with the same (kind, id). It returns the stored record.
	Save(ctx context.Context, rec Record) (Record, error)
}

const selectColumns = `SELECT kind, id, external_id, name, payload, last_sync, created_at, updated_at FROM entities`

// maxSaveAttempts bounds retries of a save that hit a transaction conflict.
const maxSaveAttempts = 3

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec      Record
		kind     string
		external sql.NullString
		lastSync sql.NullTime
	)
	if err := s.Scan(&kind, &rec.ID, &external, &rec.Name, &rec.Payload, &lastSync, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Kind = models.Kind(kind)
	rec.ExternalID = external.String
	if lastSync.Valid {
		rec.LastSync = lastSync.Time.UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (db *DB) query(ctx context.Context, op string, kind models.Kind, query string, args ...any) ([]Record, error) {
	start := time.Now()
	records, err := db.queryRecords(ctx, query, args...)
	metrics.RecordDBQuery(op, string(kind), time.Since(start), err)
	if err != nil {
		return nil, db.wrap(op, kind, err)
	}
	return records, nil
}

func (db *DB) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (db *DB) wrap(op string, kind models.Kind, err error) error {
	if isConnectionError(err) {
		logging.Error().Err(err).Str("op", op).Str("kind", string(kind)).Msg("Database connection lost")
	}
	return &QueryError{Op: op, Kind: string(kind), Err: err}
}

// first returns the lowest-id match and warns when several rows share the key.
func first(records []Record, kind models.Kind, field, value string) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	if len(records) > 1 {
		logging.Warn().
			Str("kind", string(kind)).
			Str(field, value).
			Int("matches", len(records)).
			Int64("chosen_id", records[0].ID).
			Msg("Identity conflict: several local rows match, using the first")
	}
	return records[0], true
}

// All returns every record of kind ordered by id.
func (db *DB) All(ctx context.Context, kind models.Kind) ([]Record, error) {
	return db.query(ctx, "all", kind, selectColumns+` WHERE kind = ? ORDER BY id`, string(kind))
}

// ByID returns the record with id.
func (db *DB) ByID(ctx context.Context, kind models.Kind, id int64) (Record, bool, error) {
	records, err := db.query(ctx, "by_id", kind, selectColumns+` WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil || len(records) == 0 {
		return Record{}, false, err
	}
	return records[0], true, nil
}

// ByExternalID returns the record linked to a Notion page id.
func (db *DB) ByExternalID(ctx context.Context, kind models.Kind, externalID string) (Record, bool, error) {
	if externalID == "" {
		return Record{}, false, nil
	}
	records, err := db.query(ctx, "by_external_id", kind,
		selectColumns+` WHERE kind = ? AND external_id = ? ORDER BY id`, string(kind), externalID)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := first(records, kind, "external_id", externalID)
	return rec, ok, nil
}

// ByName returns the record with the given natural key.
func (db *DB) ByName(ctx context.Context, kind models.Kind, name string) (Record, bool, error) {
	if name == "" {
		return Record{}, false, nil
	}
	records, err := db.query(ctx, "by_name", kind,
		selectColumns+` WHERE kind = ? AND name = ? ORDER BY id`, string(kind), name)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := first(records, kind, "name", name)
	return rec, ok, nil
}

// ExternalIDs returns the distinct non-empty external ids of kind.
func (db *DB) ExternalIDs(ctx context.Context, kind models.Kind) ([]string, error) {
	start := time.Now()
	ids, err := db.externalIDs(ctx, kind)
	metrics.RecordDBQuery("external_ids", string(kind), time.Since(start), err)
	if err != nil {
		return nil, db.wrap("external_ids", kind, err)
	}
	return ids, nil
}

func (db *DB) externalIDs(ctx context.Context, kind models.Kind) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT external_id FROM entities WHERE kind = ? AND external_id IS NOT NULL AND external_id <> '' ORDER BY external_id`,
		string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of records of kind.
func (db *DB) Count(ctx context.Context, kind models.Kind) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, db.wrap("count", kind, err)
	}
	return n, nil
}

// Save stores rec in its own transaction.
func (db *DB) Save(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	if db.closed {
		return Record{}, ErrClosed
	}

	var (
		saved Record
		err   error
	)
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		saved, err = db.saveTx(ctx, rec)
		if !isTransactionConflict(err) {
			break
		}
		logging.Debug().Int("attempt", attempt).Str("kind", string(rec.Kind)).Msg("Transaction conflict on save, retrying")
	}
	metrics.RecordDBQuery("save", string(rec.Kind), time.Since(start), err)
	if err != nil {
		return Record{}, db.wrap("save", rec.Kind, err)
	}
	return saved, nil
}

func (db *DB) saveTx(ctx context.Context, rec Record) (saved Record, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if rec.ExternalID != "" {
		var taken int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM entities WHERE kind = ? AND external_id = ? AND id <> ?`,
			string(rec.Kind), rec.ExternalID, rec.ID).Scan(&taken)
		if err != nil {
			return Record{}, err
		}
		if taken > 0 {
			err = ErrExternalIDTaken
			return Record{}, err
		}
	}

	now := time.Now().UTC()
	rec.UpdatedAt = now

	updated := false
	if rec.ID == 0 {
		if err = tx.QueryRowContext(ctx, `SELECT nextval('entities_id_seq')`).Scan(&rec.ID); err != nil {
			return Record{}, err
		}
	} else {
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE entities SET external_id = ?, name = ?, payload = ?, last_sync = ?, updated_at = ? WHERE kind = ? AND id = ?`,
			nullString(rec.ExternalID), rec.Name, string(rec.Payload), nullTime(rec.LastSync), now, string(rec.Kind), rec.ID)
		if err != nil {
			return Record{}, err
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return Record{}, err
		}
		updated = n > 0
	}

	if !updated {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entities (kind, id, external_id, name, payload, last_sync, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(rec.Kind), rec.ID, nullString(rec.ExternalID), rec.Name, string(rec.Payload), nullTime(rec.LastSync), rec.CreatedAt, now)
		if err != nil {
			return Record{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

// IsQueryError reports whether err wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

var _ Store = (*DB)(nil)
