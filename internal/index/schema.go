// Package index mirrors the note collection into SQLite for full-text
// search and tag statistics, with optional FTS5 support.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	slug       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	body       TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL DEFAULT 0,
	date       TEXT NOT NULL DEFAULT '',
	featured   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_sort ON notes(sort_order, title);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// An in-memory DSN (":memory:" or one with mode=memory) is pinned to a
// single connection so every query sees the same database.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", withParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if inMemory(dsn) {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func inMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func withParams(dsn string) string {
	params := "_busy_timeout=5000"
	if !inMemory(dsn) {
		params = "_journal_mode=WAL&" + params
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}
