// Package testutil provides shared test helpers for content directories and indexes.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/storage"
)

// ContentDir writes files into a fresh temp directory and returns its path.
// Every file gets the same modification time (2024-05-06 UTC) so derived
// dates are predictable.
func ContentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	mtime := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// Store creates a storage.FS over a temp content directory holding files.
func Store(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := ContentDir(t, files)
	store, err := storage.NewFS(dir, "README.md")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "folio-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
