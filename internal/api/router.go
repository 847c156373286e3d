package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/corner/internal/dashboard"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *dashboard.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Live values.
	r.Get("/clock", h.Clock)
	r.Get("/countdown", h.Countdown)

	// Ad-hoc countdowns.
	r.Get("/countdowns", h.ListCountdowns)
	r.Post("/countdowns", h.AddCountdown)
	r.Delete("/countdowns", h.ClearCountdowns)
	r.Delete("/countdowns/{id}", h.DeleteCountdown)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.AddNote)
	r.Delete("/notes", h.ClearNotes)
	r.Get("/notes/author", h.GetAuthor)
	r.Put("/notes/author", h.SetAuthor)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Content.
	r.Get("/quote", h.Quote)
	r.Get("/prompt", h.Prompt)

	// Playlist.
	r.Get("/playlist", h.GetPlaylist)
	r.Put("/playlist", h.SavePlaylist)
	r.Delete("/playlist", h.ResetPlaylist)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
