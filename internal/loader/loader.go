// Package loader turns a directory of markdown files into an ordered,
// queryable collection of notes, filling in metadata the files omit.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/curation"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// Options tunes metadata derivation. Zero values fall back to defaults.
type Options struct {
	FeaturedCount   int
	WordsPerMinute  int
	MaxDescription  int
	Placeholder     string
	CollationLocale string
}

// DefaultFeaturedCount is how many leading notes are featured when the
// files don't say otherwise.
const DefaultFeaturedCount = 3

// Loader reads notes from a storage.Provider. Results are cached for the
// process lifetime and rebuilt when the directory fingerprint changes.
// A Loader is safe for concurrent use.
type Loader struct {
	store  storage.Provider
	tables curation.Tables
	opts   Options
	locale language.Tag
	logger *slog.Logger

	mu    sync.RWMutex
	cache *snapshot
}

type snapshot struct {
	fingerprint string
	notes       []models.Note
}

// New creates a Loader over store.
func New(store storage.Provider, tables curation.Tables, opts Options, logger *slog.Logger) *Loader {
	if opts.FeaturedCount < 0 {
		opts.FeaturedCount = 0
	} else if opts.FeaturedCount == 0 {
		opts.FeaturedCount = DefaultFeaturedCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	tag, err := language.Parse(opts.CollationLocale)
	if err != nil {
		tag = language.Und
	}
	return &Loader{
		store:  store,
		tables: tables,
		opts:   opts,
		locale: tag,
		logger: logger,
	}
}

// Invalidate drops the cached collection; the next query rebuilds it.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = nil
	l.mu.Unlock()
}

// ListCategories returns the category name of every eligible file, in
// enumeration order.
func (l *Loader) ListCategories(_ context.Context) ([]string, error) {
	files, err := l.store.List()
	if err != nil {
		return nil, fmt.Errorf("loader: list categories: %w", err)
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Category
	}
	return out, nil
}

// ListAll returns every loadable note, sorted by order then title.
// Files that cannot be read or whose front-matter is malformed are skipped
// and logged; an unlistable content directory is an error.
func (l *Loader) ListAll(ctx context.Context) ([]models.Note, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return cloneNotes(snap.notes), nil
}

// Fingerprint identifies the current state of the content directory. It
// changes whenever an eligible file is added, removed or modified.
func (l *Loader) Fingerprint(ctx context.Context) (string, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	return snap.fingerprint, nil
}

// Snapshot returns the collection together with the fingerprint it was
// built from, read atomically.
func (l *Loader) Snapshot(ctx context.Context) ([]models.Note, string, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return nil, "", err
	}
	return cloneNotes(snap.notes), snap.fingerprint, nil
}

// GetBySlug returns the note with the given slug. ok is false when there is
// no such note.
func (l *Loader) GetBySlug(ctx context.Context, slug string) (note models.Note, ok bool, err error) {
	snap, err := l.load(ctx)
	if err != nil {
		return models.Note{}, false, err
	}
	for _, n := range snap.notes {
		if n.Metadata.Slug == slug {
			return n.Clone(), true, nil
		}
	}
	return models.Note{}, false, nil
}

// Search returns notes whose title or content contains keyword, ignoring
// case. An empty keyword matches every note.
func (l *Loader) Search(ctx context.Context, keyword string) ([]models.Note, error) {
	lower := strings.ToLower(keyword)
	return l.filter(ctx, func(n models.Note) bool {
		return strings.Contains(strings.ToLower(n.Metadata.Title), lower) ||
			strings.Contains(strings.ToLower(n.Content), lower)
	})
}

// ByTag returns notes carrying tag exactly.
func (l *Loader) ByTag(ctx context.Context, tag string) ([]models.Note, error) {
	return l.filter(ctx, func(n models.Note) bool { return n.HasTag(tag) })
}

// Featured returns notes flagged featured.
func (l *Loader) Featured(ctx context.Context) ([]models.Note, error) {
	return l.filter(ctx, func(n models.Note) bool { return n.Metadata.Featured })
}

// Recent returns notes not flagged featured.
func (l *Loader) Recent(ctx context.Context) ([]models.Note, error) {
	return l.filter(ctx, func(n models.Note) bool { return !n.Metadata.Featured })
}

// AllTags returns the union of every note's tags in first-seen order.
func (l *Loader) AllTags(ctx context.Context) ([]string, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range snap.notes {
		for _, t := range n.Metadata.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *Loader) filter(ctx context.Context, keep func(models.Note) bool) ([]models.Note, error) {
	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Note{}
	for _, n := range snap.notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out, nil
}

// load returns the cached snapshot when the directory is unchanged,
// rebuilding it otherwise. Two concurrent rebuilds produce the same result,
// so the rebuild runs outside the lock.
func (l *Loader) load(ctx context.Context) (*snapshot, error) {
	files, err := l.store.List()
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	fp := fingerprint(files)

	l.mu.RLock()
	cached := l.cache
	l.mu.RUnlock()
	if cached != nil && cached.fingerprint == fp {
		return cached, nil
	}

	snap, err := l.build(ctx, files)
	if err != nil {
		return nil, err
	}
	snap.fingerprint = fp

	l.mu.Lock()
	l.cache = snap
	l.mu.Unlock()

	l.logger.Debug("loader: collection rebuilt",
		slog.Int("files", len(files)),
		slog.Int("notes", len(snap.notes)))
	return snap, nil
}

func (l *Loader) build(ctx context.Context, files []models.ContentFile) (*snapshot, error) {
	notes := make([]models.Note, 0, len(files))
	fms := make(map[string]parser.FrontMatter, len(files))
	slugs := make(map[string]string, len(files)) // slug -> category

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := l.store.Read(f.Name)
		if err != nil {
			l.logger.Warn("loader: skipping unreadable file",
				slog.String("file", f.Name), slog.String("error", err.Error()))
			continue
		}
		res, err := parser.Parse(data)
		if err != nil {
			l.logger.Warn("loader: skipping file with malformed front-matter",
				slog.String("file", f.Name), slog.String("error", err.Error()))
			continue
		}

		note := l.buildNote(i, f, res)
		if base := note.Metadata.Slug; slugs[base] != "" {
			note.Metadata.Slug = uniqueSlug(base, slugs)
			l.logger.Warn("loader: slug collision resolved with suffix",
				slog.String("file", f.Name),
				slog.String("slug", base),
				slog.String("claimed_by", slugs[base]),
				slog.String("assigned", note.Metadata.Slug))
		}
		slugs[note.Metadata.Slug] = f.Category
		fms[note.Metadata.Slug] = res.FrontMatter
		notes = append(notes, note)
	}

	l.sort(notes)

	for pos := range notes {
		md := &notes[pos].Metadata
		featured := resolveFeatured(fms[md.Slug], pos, l.opts.FeaturedCount)
		md.Featured = featured.Value
		md.Sources[models.FieldFeatured] = featured.Source
	}

	return &snapshot{notes: notes}, nil
}

func (l *Loader) buildNote(index int, f models.ContentFile, res *parser.Result) models.Note {
	fm := res.FrontMatter
	title := resolveTitle(fm, f.Category)
	order := resolveOrder(fm, index)
	desc := resolveDescription(fm, res.Body, l.opts)
	date := resolveDate(fm, f.ModTime)
	readTime := resolveReadTime(fm, res.Body, l.opts)
	tags := resolveTags(fm, f.Category, l.tables)

	slugSource := models.SourceDerived
	if _, ok := l.tables.LookupSlug(f.Category); ok {
		slugSource = models.SourceCurated
	}

	return models.Note{
		Metadata: models.NoteMetadata{
			Title:       title.Value,
			Category:    f.Category,
			Slug:        l.tables.Slug(f.Category),
			Order:       order.Value,
			Description: desc.Value,
			Date:        date.Value,
			ReadTime:    readTime.Value,
			Tags:        tags.Value,
			Sources: map[string]models.Source{
				models.FieldTitle:       title.Source,
				models.FieldSlug:        slugSource,
				models.FieldOrder:       order.Source,
				models.FieldDescription: desc.Source,
				models.FieldDate:        date.Source,
				models.FieldReadTime:    readTime.Source,
				models.FieldTags:        tags.Source,
			},
		},
		Content: res.Body,
	}
}

// sort orders by order ascending, then title under the configured collation,
// then slug byte-wise so the result never depends on input order.
func (l *Loader) sort(notes []models.Note) {
	col := collate.New(l.locale)
	slices.SortStableFunc(notes, func(a, b models.Note) int {
		if a.Metadata.Order != b.Metadata.Order {
			if a.Metadata.Order < b.Metadata.Order {
				return -1
			}
			return 1
		}
		if c := col.CompareString(a.Metadata.Title, b.Metadata.Title); c != 0 {
			return c
		}
		return strings.Compare(a.Metadata.Slug, b.Metadata.Slug)
	})
}

// uniqueSlug appends -2, -3, ... until slug is unused.
func uniqueSlug(slug string, taken map[string]string) string {
	if _, ok := taken[slug]; !ok {
		return slug
	}
	for n := 2; ; n++ {
		candidate := slug + "-" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// fingerprint identifies a directory state by name, size and mtime of each
// eligible file.
func fingerprint(files []models.ContentFile) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(f.Name)
		b.WriteByte(0)
		b.WriteString(strconv.FormatInt(f.Size, 10))
		b.WriteByte(0)
		b.WriteString(strconv.FormatInt(f.ModTime.UnixNano(), 10))
		b.WriteByte('\n')
	}
	return checksum.Sum([]byte(b.String()))
}

func cloneNotes(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
