package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/curation"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/loader"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/testutil"
)

var fixture = map[string]string{
	"a.md":      "---\ntitle: RAG Best Practices\norder: 0\ntags: [LLM, RAG]\n---\n# RAG\n\nRetrieval augmented generation combines search with generation.",
	"b.md":      "---\ntitle: Fine-tuning\norder: 1\ntags: [LLM]\n---\nAdapters such as LoRA.",
	"c.md":      "---\ntitle: Vision\norder: 2\ntags: [CV]\n---\nConvolutions.",
	"d.md":      "---\ntitle: Trends\norder: 3\ntags: [AGI]\n---\nFuture.",
	"README.md": "ignored",
}

// testEnv builds the full read stack over the fixture directory.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, store := testutil.Store(t, fixture)
	l := loader.New(store, curation.Defaults(), loader.Options{}, logger)
	notes, err := l.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	db := testutil.TestDB(t)
	if _, err := index.Sync(context.Background(), db, notes, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	svc := noteservice.NewService(l, db, render.New())
	return NewRouter(svc, authEnabled, token, sseHandler)
}

func get(t *testing.T, h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func slugs(items []NoteListItem) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Slug
	}
	return strings.Join(out, ",")
}

func TestListNotes(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/notes")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decode[NoteListResponse](t, w)
	if resp.Total != 4 || slugs(resp.Notes) != "a,b,c,d" {
		t.Errorf("list = %+v", resp)
	}
	if resp.Notes[0].Title != "RAG Best Practices" || !resp.Notes[0].Featured {
		t.Errorf("first item = %+v", resp.Notes[0])
	}
}

func TestListNotes_Filters(t *testing.T) {
	router := testEnv(t, "")

	cases := []struct {
		query string
		want  string
	}{
		{"?tag=LLM", "a,b"},
		{"?tag=llm", ""},
		{"?featured=true", "a,b,c"},
		{"?featured=false", "d"},
		{"?tag=LLM&featured=false", ""},
		{"?tag=LLM&featured=true", "a,b"},
	}
	for _, c := range cases {
		w := get(t, router, "/notes"+c.query)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", c.query, w.Code)
		}
		if got := slugs(decode[NoteListResponse](t, w).Notes); got != c.want {
			t.Errorf("%s: slugs = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestListNotes_BadFeatured(t *testing.T) {
	router := testEnv(t, "")
	if w := get(t, router, "/notes?featured=maybe"); w.Code != http.StatusBadRequest {
		t.Errorf("bad featured = %d, want 400", w.Code)
	}
}

func TestGetNote(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/notes/a")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[NoteDetail](t, w)
	if note.Title != "RAG Best Practices" {
		t.Errorf("title = %q", note.Title)
	}
	if strings.Contains(note.Content, "tags:") {
		t.Errorf("content leaks front-matter: %q", note.Content)
	}
	if !strings.Contains(note.HTML, `<h1 id="rag">RAG</h1>`) {
		t.Errorf("html = %q", note.HTML)
	}
	if note.Description != "Retrieval augmented generation combines search with generation" {
		t.Errorf("description = %q", note.Description)
	}

	etag := w.Header().Get("ETag")
	if etag == "" || etag != noteservice.ETag(note.Checksum) {
		t.Fatalf("etag = %q", etag)
	}
	if w := get(t, router, "/notes/a", "If-None-Match", etag); w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/notes/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing note = %d, want 404", w.Code)
	}
	if body := decode[errResponse](t, w); body.Error != "not found" {
		t.Errorf("error body = %+v", body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	resp := decode[SearchResponse](t, get(t, router, "/search?q=rag"))
	if slugs(resp.Notes) != "a" {
		t.Errorf("search rag = %q", slugs(resp.Notes))
	}

	resp = decode[SearchResponse](t, get(t, router, "/search"))
	if resp.Total != 4 {
		t.Errorf("empty query should match all, got %d", resp.Total)
	}
}

func TestFullTextEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/fulltext?q=LoRA")
	if w.Code != http.StatusOK {
		t.Fatalf("fulltext status = %d", w.Code)
	}
	resp := decode[FullTextResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "b" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestFullTextMissingQuery(t *testing.T) {
	router := testEnv(t, "")
	if w := get(t, router, "/fulltext?q=%20"); w.Code != http.StatusBadRequest {
		t.Errorf("fulltext no query = %d, want 400", w.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	router := testEnv(t, "")

	resp := decode[TagsResponse](t, get(t, router, "/tags"))
	want := []TagCount{
		{Tag: "LLM", Count: 2},
		{Tag: "RAG", Count: 1},
		{Tag: "CV", Count: 1},
		{Tag: "AGI", Count: 1},
	}
	if len(resp.Tags) != len(want) {
		t.Fatalf("tags = %+v", resp.Tags)
	}
	for i := range want {
		if resp.Tags[i] != want[i] {
			t.Errorf("tags[%d] = %+v, want %+v", i, resp.Tags[i], want[i])
		}
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	router := testEnv(t, "")

	resp := decode[CategoriesResponse](t, get(t, router, "/categories"))
	if strings.Join(resp.Categories, ",") != "a,b,c,d" {
		t.Errorf("categories = %v", resp.Categories)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")
	if w := get(t, router, "/notes", "Authorization", "Bearer secret123"); w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := get(t, router, "/notes")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")
	if w := get(t, router, "/notes", "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if w := get(t, router, "/notes", "Authorization", "secret123"); w.Code != http.StatusUnauthorized {
		t.Errorf("missing scheme = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")
	if w := get(t, router, "/notes"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests use a stand-in stream handler.

var okStream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", okStream)
	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "", okStream)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE disabled auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", okStream)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", okStream)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with query token = %d, want 200", w.Code)
	}
	if w.Header().Get("Cache-Control") == "" {
		t.Error("SSE response should carry no-cache headers")
	}

	if w := get(t, router, "/events?access_token=nope"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE with bad query token = %d, want 401", w.Code)
	}
}

func TestSSEEvents_NotMountedWithoutHandler(t *testing.T) {
	router := testEnv(t, "")
	if w := get(t, router, "/events"); w.Code != http.StatusNotFound {
		t.Errorf("events without handler = %d, want 404", w.Code)
	}
}

func TestContentDirRemoved_Returns503(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir, store := testutil.Store(t, fixture)
	l := loader.New(store, curation.Defaults(), loader.Options{}, logger)
	svc := noteservice.NewService(l, testutil.TestDB(t), nil)
	h := NewRouter(svc, false, "", nil)

	if w := get(t, h, "/notes"); w.Code != http.StatusOK {
		t.Fatalf("before removal: status %d", w.Code)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	for _, target := range []string{"/notes", "/notes/a", "/categories"} {
		w := get(t, h, target)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status %d, want 503", target, w.Code)
		}
	}
}
