package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Slug      string
	Title     string
	Category  string
	Checksum  string
	Tags      []string
	Order     int
	Date      string
	Featured  bool
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertNote inserts or replaces a note and its FTS entry within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("index: encode tags: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO notes (slug, title, category, checksum, tags, body, sort_order, date, featured, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title      = excluded.title,
			category   = excluded.category,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			sort_order = excluded.sort_order,
			date       = excluded.date,
			featured   = excluded.featured,
			updated_at = excluded.updated_at
	`, n.Slug, n.Title, n.Category, n.Checksum, string(tagsJSON), body,
		n.Order, n.Date, n.Featured, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// No-op when the FTS5 tag is absent.
	if err := ftsUpsert(tx, n.Slug, n.Title, body, tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteNote removes a note and its FTS entry.
func (db *DB) DeleteNote(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or "" if it is not indexed.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE slug = ?`, slug).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns slug -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// TagCounts returns how many indexed notes carry each tag.
func (db *DB) TagCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT t.value, count(*)
		FROM notes, json_each(notes.tags) AS t
		GROUP BY t.value
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tag counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		out[tag] = n
	}
	return out, rows.Err()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
