package loader

import (
	"time"

	"github.com/starford/folio/internal/curation"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

// dateLayout is the ISO calendar date used for derived dates.
const dateLayout = "2006-01-02"

// Each resolver returns the front-matter value when present, otherwise the
// derived default, tagged with where it came from.

func resolveTitle(fm parser.FrontMatter, category string) models.Resolved[string] {
	if fm.Title != "" {
		return models.Explicit(fm.Title)
	}
	return models.Derived(category)
}

func resolveOrder(fm parser.FrontMatter, index int) models.Resolved[int] {
	if fm.Order != nil {
		return models.Explicit(*fm.Order)
	}
	return models.Derived(index)
}

func resolveDescription(fm parser.FrontMatter, body string, opts Options) models.Resolved[string] {
	if fm.Description != "" {
		return models.Explicit(fm.Description)
	}
	return models.Derived(parser.ExtractDescription(body, opts.MaxDescription, opts.Placeholder))
}

func resolveDate(fm parser.FrontMatter, modTime time.Time) models.Resolved[string] {
	if fm.Date != "" {
		return models.Explicit(fm.Date)
	}
	return models.Derived(modTime.UTC().Format(dateLayout))
}

func resolveReadTime(fm parser.FrontMatter, body string, opts Options) models.Resolved[string] {
	if fm.ReadTime != "" {
		return models.Explicit(fm.ReadTime)
	}
	return models.Derived(parser.ReadTime(body, opts.WordsPerMinute))
}

// resolveTags keeps an explicit empty list: a file can opt out of tags.
func resolveTags(fm parser.FrontMatter, category string, tables curation.Tables) models.Resolved[[]string] {
	if fm.Tags != nil {
		return models.Explicit(append([]string{}, (*fm.Tags)...))
	}
	if tags, ok := tables.LookupTags(category); ok {
		return models.Curated(tags)
	}
	return models.Derived(tables.Fallback())
}

// resolveFeatured runs after sorting; position is the note's rank in the
// final listing.
func resolveFeatured(fm parser.FrontMatter, position, featuredCount int) models.Resolved[bool] {
	if fm.Featured != nil {
		return models.Explicit(*fm.Featured)
	}
	return models.Derived(position < featuredCount)
}
