// Package sqlite implements repository.Slot on top of an embedded SQLite
// database.
//
// WHY A TABLE FOR ONE BLOB?
// The snippet list is persisted as a single JSON document, and this backend
// keeps it that way: one row per slot name in the slots table. The database
// gives us durable, crash-safe writes and lets several slots (for example a
// staging list next to the live one) share one file.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C compiler is
// needed to build the binary.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. Use Slot to get a repository.Slot bound
// to a slot name.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/devhost.db"  file-based database (persistent)
//   - ":memory:"         in-memory database, lost on close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a separate empty database, so the
	// pool must never open a second one.
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

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

// migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			name       TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating slots table: %w", err)
	}
	return nil
}
