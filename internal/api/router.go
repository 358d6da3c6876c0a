package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scraps/internal/scrapservice"
	"github.com/starford/scraps/internal/template"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// gen, if nil, disables the template routes.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *scrapservice.Service, gen *template.Generator, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, gen)
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if authEnabled {
			r.Use(bearerAuth(token, false))
		}

		// Scraps. Keys are "title" or "ctx/title".
		r.Get("/scraps/*", h.GetScrap)
		r.Get("/links/*", h.Links)
		r.Get("/backlinks/*", h.Backlinks)

		r.Get("/search", h.Search)

		// Tags.
		r.Get("/tags", h.ListTags)
		r.Get("/tags/*", h.TagBacklinks)

		if gen != nil {
			r.Get("/templates", h.ListTemplates)
			r.Post("/scraps", h.GenerateScrap)
		}
	})

	if sseHandler != nil {
		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(bearerAuth(token, true))
			}
			r.Get("/events", sseHandler.ServeHTTP)
		})
	}

	return r
}
