// Package models defines the domain types for Folio.
package models

import "time"

// Source records whether a metadata field came from front-matter or was derived.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceCurated  Source = "curated"
	SourceDerived  Source = "derived"
)

// Field names used as keys in NoteMetadata.Sources.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldOrder       = "order"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldReadTime    = "readTime"
	FieldTags        = "tags"
	FieldFeatured    = "featured"
)

// Resolved is the outcome of a per-field fallback chain.
type Resolved[T any] struct {
	Value  T
	Source Source
}

// Explicit wraps a value taken verbatim from front-matter.
func Explicit[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v, Source: SourceExplicit}
}

// Curated wraps a value taken from the curated category tables.
func Curated[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v, Source: SourceCurated}
}

// Derived wraps a value computed by the loader.
func Derived[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v, Source: SourceDerived}
}

// NoteMetadata describes a note. Every field is always populated; Sources
// tells which ones were supplied by the file and which were filled in.
type NoteMetadata struct {
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	Slug        string            `json:"slug"`
	Order       int               `json:"order"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	ReadTime    string            `json:"readTime"`
	Tags        []string          `json:"tags"`
	Featured    bool              `json:"featured"`
	Sources     map[string]Source `json:"sources,omitempty"`
}

// Note pairs metadata with the markdown body (front-matter stripped).
type Note struct {
	Metadata NoteMetadata `json:"metadata"`
	Content  string       `json:"content"`
}

// HasTag reports whether the note carries tag exactly.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (n Note) Clone() Note {
	out := n
	out.Metadata.Tags = append([]string{}, n.Metadata.Tags...)
	if n.Metadata.Sources != nil {
		out.Metadata.Sources = make(map[string]Source, len(n.Metadata.Sources))
		for k, v := range n.Metadata.Sources {
			out.Metadata.Sources[k] = v
		}
	}
	return out
}

// ContentFile is one eligible source file in the content directory.
type ContentFile struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
}
