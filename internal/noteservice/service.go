// Package noteservice answers the read queries that the HTTP API and the MCP
// server share, combining the loaded collection, the search index and the
// markdown renderer.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/render"
)

// Collection is the query surface of the content loader.
type Collection interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]models.Note, error)
	GetBySlug(ctx context.Context, slug string) (models.Note, bool, error)
	Search(ctx context.Context, keyword string) ([]models.Note, error)
	ByTag(ctx context.Context, tag string) ([]models.Note, error)
	Featured(ctx context.Context) ([]models.Note, error)
	Recent(ctx context.Context) ([]models.Note, error)
	AllTags(ctx context.Context) ([]string, error)
	Fingerprint(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) ([]models.Note, string, error)
}

// MaxFullTextLimit caps the number of full-text results per query.
const MaxFullTextLimit = 100

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	models.NoteMetadata
	Content  string `json:"content"`
	HTML     string `json:"html"`
	Checksum string `json:"checksum"`
}

// NoteListItem is a note without its body.
type NoteListItem struct {
	models.NoteMetadata
}

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ListFilter narrows ListNotes. Zero values mean no filtering.
type ListFilter struct {
	Tag      string
	Featured *bool
}

// Service is safe for concurrent use when its collaborators are.
type Service struct {
	notes  Collection
	idx    index.NoteIndex
	md     *render.Renderer
	logger *slog.Logger

	syncMu sync.Mutex
	synced string // collection fingerprint last mirrored into idx
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for index sync reports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service.
func NewService(notes Collection, idx index.NoteIndex, md *render.Renderer, opts ...Option) *Service {
	if md == nil {
		md = render.New()
	}
	s := &Service{notes: notes, idx: idx, md: md, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncIndex mirrors the current collection into the index. Without force it
// does nothing when the content directory is unchanged since the last sync.
func (s *Service) SyncIndex(ctx context.Context, force bool) (index.SyncStats, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if !force {
		fp, err := s.notes.Fingerprint(ctx)
		if err != nil {
			return index.SyncStats{}, err
		}
		if fp == s.synced {
			return index.SyncStats{}, nil
		}
	}

	notes, fp, err := s.notes.Snapshot(ctx)
	if err != nil {
		return index.SyncStats{}, err
	}
	stats, err := index.Sync(ctx, s.idx, notes, s.logger)
	if err != nil {
		return stats, fmt.Errorf("noteservice: sync index: %w", err)
	}
	s.synced = fp
	return stats, nil
}

// ListNotes returns notes in listing order, optionally filtered by tag and
// by the featured flag.
func (s *Service) ListNotes(ctx context.Context, f ListFilter) ([]NoteListItem, error) {
	var notes []models.Note
	var err error
	switch {
	case f.Tag != "":
		notes, err = s.notes.ByTag(ctx, f.Tag)
	case f.Featured != nil && *f.Featured:
		notes, err = s.notes.Featured(ctx)
	case f.Featured != nil:
		notes, err = s.notes.Recent(ctx)
	default:
		notes, err = s.notes.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	items := make([]NoteListItem, 0, len(notes))
	for _, n := range notes {
		if f.Featured != nil && n.Metadata.Featured != *f.Featured {
			continue
		}
		items = append(items, NoteListItem{NoteMetadata: n.Metadata})
	}
	return items, nil
}

// GetNote returns a note with its rendered HTML, or apperr.ErrNotFound.
func (s *Service) GetNote(ctx context.Context, slug string) (*NoteDetail, error) {
	note, ok, err := s.notes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("noteservice: note %q: %w", slug, apperr.ErrNotFound)
	}
	html, err := s.md.Render(note.Content)
	if err != nil {
		return nil, err
	}
	cs, err := index.NoteChecksum(note)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		NoteMetadata: note.Metadata,
		Content:      note.Content,
		HTML:         html,
		Checksum:     cs,
	}, nil
}

// Search is the case-insensitive substring search over titles and bodies.
func (s *Service) Search(ctx context.Context, keyword string) ([]NoteListItem, error) {
	notes, err := s.notes.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = NoteListItem{NoteMetadata: n.Metadata}
	}
	return items, nil
}

// FullText delegates ranked search with snippets to the index, bringing it
// up to date first. limit is capped at MaxFullTextLimit.
func (s *Service) FullText(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if _, err := s.SyncIndex(ctx, false); err != nil {
		return nil, err
	}
	return s.idx.Search(query, min(limit, MaxFullTextLimit))
}

// Tags returns every tag in first-seen order with its note count.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	if _, err := s.SyncIndex(ctx, false); err != nil {
		return nil, err
	}
	tags, err := s.notes.AllTags(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.idx.TagCounts()
	if err != nil {
		return nil, err
	}
	out := make([]TagCount, len(tags))
	for i, t := range tags {
		out[i] = TagCount{Tag: t, Count: counts[t]}
	}
	return out, nil
}

// Categories lists the category of every content file.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.notes.ListCategories(ctx)
}

// ETag formats a note checksum as a strong entity tag.
func ETag(cs string) string {
	return `"` + cs + `"`
}
