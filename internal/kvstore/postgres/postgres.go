// Package postgres implements kvstore.Backend on a PostgreSQL table, for
// running the contact book against a shared database instead of a local file.
//
// Several processes may point at the same table. The Store's per-key lock
// only covers one process, so this backend relies on the version column to
// reject a write based on a stale read.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/contact-book/internal/kvstore"
)

// compile-time check that *DB implements kvstore.Backend
var _ kvstore.Backend = (*DB)(nil)

// DB is a kvstore.Backend on a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, verifies the connection and creates the kv_entries
// table if it does not exist.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			version    BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating kv_entries table: %w", err)
	}
	return nil
}

// Close closes every connection in the pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) Get(ctx context.Context, key string) (kvstore.Record, error) {
	var rec kvstore.Record

	err := db.pool.QueryRow(ctx,
		`SELECT value, version FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&rec.Value, &rec.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kvstore.Record{}, kvstore.ErrNotExist
		}
		return kvstore.Record{}, fmt.Errorf("postgres: getting %q: %w", key, err)
	}

	return rec, nil
}

// Put follows the same three-way contract as the SQLite backend: upsert for
// AnyVersion, insert-if-absent for 0, compare-and-swap otherwise.
func (db *DB) Put(ctx context.Context, key, value string, expected int64) (int64, error) {
	now := time.Now().UTC()

	switch {
	case expected == kvstore.AnyVersion:
		var version int64
		err := db.pool.QueryRow(ctx,
			`INSERT INTO kv_entries (key, value, version, updated_at)
			 VALUES ($1, $2, 1, $3)
			 ON CONFLICT (key) DO UPDATE SET
			     value = EXCLUDED.value,
			     version = kv_entries.version + 1,
			     updated_at = EXCLUDED.updated_at
			 RETURNING version`,
			key, value, now,
		).Scan(&version)
		if err != nil {
			return 0, fmt.Errorf("postgres: upserting %q: %w", key, err)
		}
		return version, nil

	case expected == 0:
		tag, err := db.pool.Exec(ctx,
			`INSERT INTO kv_entries (key, value, version, updated_at)
			 VALUES ($1, $2, 1, $3)
			 ON CONFLICT (key) DO NOTHING`,
			key, value, now,
		)
		if err != nil {
			return 0, fmt.Errorf("postgres: inserting %q: %w", key, err)
		}
		if err := checkAffected(tag); err != nil {
			return 0, err
		}
		return 1, nil

	default:
		tag, err := db.pool.Exec(ctx,
			`UPDATE kv_entries SET value = $1, version = version + 1, updated_at = $2
			 WHERE key = $3 AND version = $4`,
			value, now, key, expected,
		)
		if err != nil {
			return 0, fmt.Errorf("postgres: updating %q: %w", key, err)
		}
		if err := checkAffected(tag); err != nil {
			return 0, err
		}
		return expected + 1, nil
	}
}

func checkAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return kvstore.ErrVersionMismatch
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: deleting %q: %w", key, err)
	}
	return nil
}

func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM kv_entries`); err != nil {
		return fmt.Errorf("postgres: clearing: %w", err)
	}
	return nil
}
