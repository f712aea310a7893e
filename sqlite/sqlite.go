// Package sqlite provides a SQLite-backed progress ledger.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/harvest"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS completed (
	url          TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	committed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_completed_run_id ON completed(run_id);
`

// DB is the SQLite database holding the run and completion tables.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB for path. Use MemoryPath for a throwaway database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects, applies pragmas and creates the schema if needed.
func (db *DB) Open(ctx context.Context) error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "open %s", db.path)
	}
	// One writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return harvest.WrapError(harvest.EFILESYSTEM, err, "connect %s", db.path)
	}

	for _, pragma := range db.pragmas() {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return harvest.WrapError(harvest.EFILESYSTEM, err, "%s", pragma)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return harvest.WrapError(harvest.EFILESYSTEM, err, "create schema")
	}

	db.db = conn
	return nil
}

// pragmas returns the connection settings. A second harvest process waits
// on the lock instead of failing; WAL is unavailable in memory.
func (db *DB) pragmas() []string {
	p := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if db.path != MemoryPath {
		p = append(p, "PRAGMA journal_mode = WAL")
	}
	return p
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
