// Package sqlite provides local persistence for imported permit snapshots
// and the enforcement ledger.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sheriff SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the sheriff database inside dir and
// applies all migrations.
func Open(dir string) (*DB, error) {
	return OpenFile(filepath.Join(dir, "sheriff.db"))
}

// OpenFile opens the database at an explicit path.
func OpenFile(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// modernc sqlite is in-process; a single connection avoids table locks.
	handle.SetMaxOpenConns(1)

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func migrations() []string {
	return []string{
		// Imported permit snapshots
		`CREATE TABLE IF NOT EXISTS permits (
			id                 TEXT PRIMARY KEY,
			address            TEXT NOT NULL,
			type               TEXT NOT NULL DEFAULT '',
			status             TEXT NOT NULL DEFAULT '',
			submitted_at       TEXT NOT NULL DEFAULT '',
			statute_limit_days INTEGER NOT NULL,
			days_open          INTEGER NOT NULL DEFAULT 0,
			refund_owed_cents  INTEGER NOT NULL DEFAULT 0,
			imported_at        TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Completed enforcement actions, hash-chained by the ledger layer
		`CREATE TABLE IF NOT EXISTS enforcement_ledger (
			seq            INTEGER PRIMARY KEY,
			cycle_id       TEXT NOT NULL UNIQUE,
			permit_id      TEXT NOT NULL,
			address        TEXT NOT NULL DEFAULT '',
			completed_at   TEXT NOT NULL,
			notice_sha256  TEXT NOT NULL,
			proof_digest   TEXT NOT NULL,
			proof_provider TEXT NOT NULL DEFAULT '',
			prev_hash      TEXT NOT NULL,
			entry_hash     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_permit ON enforcement_ledger(permit_id)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
