package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/folio/internal/noteservice"
)

// NewRouter returns the /api routes. Every route sits behind AuthMiddleware;
// sseHandler, when non-nil, serves GET /events.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Get("/{slug}", h.GetNote)
	})
	r.Get("/search", h.Search)
	r.Get("/fulltext", h.FullText)
	r.Get("/tags", h.Tags)
	r.Get("/categories", h.Categories)

	if sseHandler != nil {
		r.With(middleware.NoCache).Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
