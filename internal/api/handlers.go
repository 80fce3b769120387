package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes in display order
//	@Tags			notes
//	@Produce		json
//	@Param			tag			query		string	false	"Only notes carrying this tag"
//	@Param			featured	query		bool	false	"true for featured notes, false for recent"
//	@Success		200			{object}	NoteListResponse
//	@Failure		400			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := noteservice.ListFilter{Tag: q.Get("tag")}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("featured must be true or false"))
			return
		}
		filter.Featured = &featured
	}

	items, err := h.svc.ListNotes(r.Context(), filter)
	if err != nil {
		writeError(w, "list notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{slug}.
//
//	@Summary		Get a single note by slug, with rendered HTML
//	@Tags			notes
//	@Produce		json
//	@Param			slug			path		string	true	"Note slug"
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	NoteDetail
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{slug} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	note, err := h.svc.GetNote(r.Context(), slug)
	if err != nil {
		writeError(w, "get note failed", err, slog.String("slug", slug))
		return
	}

	etag := noteservice.ETag(note.Checksum)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search.
//
//	@Summary		Case-insensitive substring search over titles and content
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Keyword; empty matches every note"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeError(w, "search failed", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Notes: items, Total: len(items)})
}

// FullText handles GET /api/fulltext.
//
//	@Summary		Ranked full-text search with snippets
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	FullTextResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/fulltext [get]
func (h *Handler) FullText(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.FullText(r.Context(), q, limit)
	if err != nil {
		writeError(w, "fulltext search failed", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, FullTextResponse{Results: results})
}

// Tags handles GET /api/tags.
//
//	@Summary		List tags in first-seen order with note counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, "list tags failed", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Categories handles GET /api/categories.
//
//	@Summary		List content categories
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}
