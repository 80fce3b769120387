//go:build sqlite_fts5

package index

import (
	"strings"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes_fts`).Scan(&count); err != nil {
		t.Fatalf("notes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := NoteRow{Slug: "fts", Title: "FTS Note", Checksum: "f1", Tags: []string{"search"}}
	if err := db.UpsertNote(row, "Folio provides powerful full-text search capabilities."); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Slug != "fts" {
		t.Errorf("slug = %q", results[0].Slug)
	}
	if !strings.Contains(results[0].Snippet, "<b>") {
		t.Errorf("snippet %q lacks highlight markers", results[0].Snippet)
	}
}

func TestFTS5_CJKSubstring(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Slug: "rag", Title: "检索增强", Checksum: "1"}, "检索增强生成结合了检索与生成模型。")

	results, err := db.Search("增强生成", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "rag" {
		t.Errorf("results = %+v", results)
	}
}

func TestFTS5_QuerySyntaxIsQuoted(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Slug: "q", Title: "Quote", Checksum: "1"}, `a "quoted" AND-ish body`)

	if _, err := db.Search(`"quoted" AND-ish`, 10); err != nil {
		t.Fatalf("Search with FTS operators should not error: %v", err)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Slug: "gone", Checksum: "g"}, "vanishing content")
	_ = db.DeleteNote("gone")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Slug == "gone" {
			t.Error("deleted note still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Slug: "evo", Title: "Old", Checksum: "1"}, "original text")
	_ = db.UpsertNote(NoteRow{Slug: "evo", Title: "New", Checksum: "2"}, "replacement text")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
