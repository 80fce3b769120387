//go:build !sqlite_fts5

package index

import (
	"database/sql"
)

// FTS5 not compiled in; search scans the notes table with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// Search performs a LIKE-based substring search.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return db.likeSearch(query, limit)
}
