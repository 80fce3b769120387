package api

import (
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/noteservice"
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a note without its body (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// TagCount is one entry of the tag listing (aliased from the domain layer).
type TagCount = noteservice.TagCount

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps substring search results.
type SearchResponse struct {
	Query string         `json:"query" example:"rag"`
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"3" validate:"required"`
}

// FullTextResponse wraps index search hits.
type FullTextResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// TagsResponse wraps the tag listing.
type TagsResponse struct {
	Tags []TagCount `json:"tags" validate:"required"`
}

// CategoriesResponse wraps the category listing.
type CategoriesResponse struct {
	Categories []string `json:"categories" validate:"required"`
}
