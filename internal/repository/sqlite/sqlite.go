// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works, and ":memory:" databases
// make repository tests self-contained.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements all three repository
// interfaces (users, folders, files). One connection pool, one schema.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/filevault.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permission issue
	// surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening — needed
	// for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. files.folder_id references
	// folders(id), so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
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

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// NULL SENTINELS:
// folders.parent_id and files.folder_id are NULL for root-level entities (the
// Go layer maps NULL ↔ ""). editors_ids is a JSON array of user ids, NULL
// until the entity is first shared.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS folders (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			is_public   INTEGER NOT NULL DEFAULT 0,
			editors_ids TEXT,
			parent_id   TEXT,
			owner_id    TEXT NOT NULL REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);
		CREATE INDEX IF NOT EXISTS idx_folders_owner_id ON folders(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating folders table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			key         TEXT NOT NULL,
			is_public   INTEGER NOT NULL DEFAULT 0,
			editors_ids TEXT,
			folder_id   TEXT REFERENCES folders(id),
			owner_id    TEXT NOT NULL REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_files_folder_id ON files(folder_id);
		CREATE INDEX IF NOT EXISTS idx_files_owner_id ON files(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating files table: %w", err)
	}

	return nil
}

// nullable maps the Go-side "" root sentinel to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
