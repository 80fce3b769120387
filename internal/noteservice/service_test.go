package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/curation"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/loader"
	"github.com/starford/folio/internal/testutil"
)

func testService(t *testing.T, files map[string]string) *Service {
	t.Helper()
	svc, _ := testServiceDir(t, files)
	return svc
}

// testServiceDir returns the service with its index synced at startup and
// the content directory behind it.
func testServiceDir(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir, store := testutil.Store(t, files)
	l := loader.New(store, curation.Defaults(), loader.Options{}, logger)
	svc := NewService(l, testutil.TestDB(t), nil, WithLogger(logger))
	if _, err := svc.SyncIndex(context.Background(), true); err != nil {
		t.Fatalf("SyncIndex: %v", err)
	}
	return svc, dir
}

func TestGetNote_NotFound(t *testing.T) {
	svc := testService(t, map[string]string{"a.md": "body"})
	_, err := svc.GetNote(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetNote_RendersAndChecksums(t *testing.T) {
	svc := testService(t, map[string]string{"a.md": "**bold** text"})
	d, err := svc.GetNote(context.Background(), "a")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if !strings.Contains(d.HTML, "<strong>bold</strong>") {
		t.Errorf("html = %q", d.HTML)
	}
	if len(d.Checksum) != 64 {
		t.Errorf("checksum = %q", d.Checksum)
	}
	if ETag(d.Checksum) != `"`+d.Checksum+`"` {
		t.Errorf("etag = %q", ETag(d.Checksum))
	}
}

func TestListNotes_FeaturedPartition(t *testing.T) {
	svc := testService(t, map[string]string{
		"a.md": "", "b.md": "", "c.md": "", "d.md": "",
	})
	ctx := context.Background()
	yes, no := true, false

	all, _ := svc.ListNotes(ctx, ListFilter{})
	featured, _ := svc.ListNotes(ctx, ListFilter{Featured: &yes})
	recent, _ := svc.ListNotes(ctx, ListFilter{Featured: &no})
	if len(all) != 4 || len(featured) != 3 || len(recent) != 1 {
		t.Errorf("all=%d featured=%d recent=%d", len(all), len(featured), len(recent))
	}
}

func TestTags_CountsFromIndex(t *testing.T) {
	svc := testService(t, map[string]string{
		"a.md": "---\ntags: [x, y]\n---\n",
		"b.md": "---\ntags: [y]\n---\n",
	})
	tags, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != (TagCount{Tag: "x", Count: 1}) || tags[1] != (TagCount{Tag: "y", Count: 2}) {
		t.Errorf("tags = %+v", tags)
	}
}

func TestSearchAndCategories(t *testing.T) {
	svc := testService(t, map[string]string{
		"alpha.md": "mentions Transformer",
		"beta.md":  "nothing",
	})
	ctx := context.Background()

	hits, err := svc.Search(ctx, "transformer")
	if err != nil || len(hits) != 1 || hits[0].Slug != "alpha" {
		t.Errorf("search = %+v, %v", hits, err)
	}
	cats, err := svc.Categories(ctx)
	if err != nil || strings.Join(cats, ",") != "alpha,beta" {
		t.Errorf("categories = %v, %v", cats, err)
	}
}

func TestIndexFollowsFilesAddedAfterStartup(t *testing.T) {
	svc, dir := testServiceDir(t, map[string]string{
		"a.md": "---\ntags: [x]\n---\nalpha body",
	})
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "b.md"), []byte("---\ntags: [y]\n---\nbravo body"), 0o644); err != nil {
		t.Fatal(err)
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	want := []TagCount{{Tag: "x", Count: 1}, {Tag: "y", Count: 1}}
	if len(tags) != 2 || tags[0] != want[0] || tags[1] != want[1] {
		t.Errorf("tags = %+v, want %+v", tags, want)
	}

	hits, err := svc.FullText(ctx, "bravo", 10)
	if err != nil {
		t.Fatalf("FullText: %v", err)
	}
	if len(hits) != 1 || hits[0].Slug != "b" {
		t.Errorf("fulltext = %+v, want one hit on b", hits)
	}

	if err := os.Remove(filepath.Join(dir, "b.md")); err != nil {
		t.Fatal(err)
	}
	hits, err = svc.FullText(ctx, "bravo", 10)
	if err != nil {
		t.Fatalf("FullText after delete: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("fulltext after delete = %+v, want none", hits)
	}
}

func TestSyncIndex_NoopWhenUnchanged(t *testing.T) {
	svc := testService(t, map[string]string{"a.md": "alpha"})
	stats, err := svc.SyncIndex(context.Background(), false)
	if err != nil {
		t.Fatalf("SyncIndex: %v", err)
	}
	if stats != (index.SyncStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestFullText_LimitCapped(t *testing.T) {
	files := make(map[string]string, MaxFullTextLimit+5)
	for i := range MaxFullTextLimit + 5 {
		files[fmt.Sprintf("n%03d.md", i)] = "shared keyword"
	}
	svc := testService(t, files)
	hits, err := svc.FullText(context.Background(), "keyword", 1000)
	if err != nil {
		t.Fatalf("FullText: %v", err)
	}
	if len(hits) != MaxFullTextLimit {
		t.Errorf("hits = %d, want %d", len(hits), MaxFullTextLimit)
	}
}
