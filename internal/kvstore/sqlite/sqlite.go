// Package sqlite implements kvstore.Backend on an embedded SQLite database.
//
// One table holds every key:
//
//	kv_entries(key TEXT PRIMARY KEY, value TEXT, version INTEGER, updated_at DATETIME)
//
// The driver is modernc.org/sqlite, a pure Go build of SQLite, so no C
// toolchain is needed. Use ":memory:" for a throwaway database.
package sqlite

import (
	"database/sql"
	"fmt"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"
)

// DB is a kvstore.Backend backed by one SQLite file.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path and makes sure
// the kv_entries table exists.
//
// CONNECTIONS:
// The pool is limited to one connection. Every ":memory:" connection is its
// own database, and SQLite serializes writers anyway, so a single connection
// keeps both cases correct.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database location Open was called with.
func (db *DB) Path() string {
	return db.path
}

// migrate creates the kv_entries table. CREATE TABLE IF NOT EXISTS keeps it
// safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv_entries table: %w", err)
	}
	return nil
}
