//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// trigramMin is the shortest term the trigram tokenizer can match.
const trigramMin = 3

// The trigram tokenizer gives substring matching, which CJK text needs
// because unicode61 would treat a whole run of ideographs as one token.
func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			slug UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'trigram'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, slug, title, body string, tags []string) error {
	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO notes_fts (slug, title, body, tags) VALUES (?, ?, ?, ?)`,
		slug, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, slug string) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching results
// with snippets. Terms shorter than a trigram fall back to LIKE.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if n := shortestTerm(query); n < trigramMin {
		return db.likeSearch(query, limit)
	}
	rows, err := db.conn.Query(`
		SELECT slug,
		       title,
		       snippet(notes_fts, 2, '<b>', '</b>', '...', 32)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchExpr(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// matchExpr quotes each term so user input is never parsed as FTS5 syntax.
// Terms are ANDed.
func matchExpr(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
