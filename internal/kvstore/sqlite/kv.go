package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/contact-book/internal/kvstore"
)

// compile-time check that *DB implements kvstore.Backend
var _ kvstore.Backend = (*DB)(nil)

// Get returns the value and version stored under key.
func (db *DB) Get(ctx context.Context, key string) (kvstore.Record, error) {
	var rec kvstore.Record

	err := db.conn.QueryRowContext(ctx,
		`SELECT value, version FROM kv_entries WHERE key = ?`,
		key,
	).Scan(&rec.Value, &rec.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kvstore.Record{}, kvstore.ErrNotExist
		}
		return kvstore.Record{}, fmt.Errorf("sqlite: getting %q: %w", key, err)
	}

	return rec, nil
}

// Put writes value under key.
//
// The three cases map onto three statements:
//
//	AnyVersion → upsert, bumping the version of an existing row
//	0          → insert only if the key is new
//	n > 0      → update only the row still at version n
//
// A conditional statement that touches no row means someone else got there
// first, reported as kvstore.ErrVersionMismatch.
func (db *DB) Put(ctx context.Context, key, value string, expected int64) (int64, error) {
	now := time.Now().UTC()

	switch {
	case expected == kvstore.AnyVersion:
		var version int64
		err := db.conn.QueryRowContext(ctx,
			`INSERT INTO kv_entries (key, value, version, updated_at)
			 VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO UPDATE SET
			     value = excluded.value,
			     version = kv_entries.version + 1,
			     updated_at = excluded.updated_at
			 RETURNING version`,
			key, value, now,
		).Scan(&version)
		if err != nil {
			return 0, fmt.Errorf("sqlite: upserting %q: %w", key, err)
		}
		return version, nil

	case expected == 0:
		res, err := db.conn.ExecContext(ctx,
			`INSERT INTO kv_entries (key, value, version, updated_at)
			 VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, value, now,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: inserting %q: %w", key, err)
		}
		if err := checkAffected(res, key); err != nil {
			return 0, err
		}
		return 1, nil

	default:
		res, err := db.conn.ExecContext(ctx,
			`UPDATE kv_entries SET value = ?, version = version + 1, updated_at = ?
			 WHERE key = ? AND version = ?`,
			value, now, key, expected,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: updating %q: %w", key, err)
		}
		if err := checkAffected(res, key); err != nil {
			return 0, err
		}
		return expected + 1, nil
	}
}

// checkAffected turns "no row written" into a version mismatch.
func checkAffected(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected for %q: %w", key, err)
	}
	if n == 0 {
		return kvstore.ErrVersionMismatch
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: deleting %q: %w", key, err)
	}
	return nil
}

// Clear removes every key.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM kv_entries`); err != nil {
		return fmt.Errorf("sqlite: clearing: %w", err)
	}
	return nil
}
