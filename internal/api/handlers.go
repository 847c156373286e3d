package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/corner/internal/dashboard"
)

// Handler holds API route handlers.
type Handler struct {
	svc *dashboard.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

// Clock handles GET /api/clock.
//
//	@Summary		Current civil time
//	@Tags			live
//	@Produce		json
//	@Success		200	{object}	dashboard.ClockView
//	@Security		BearerAuth
//	@Router			/clock [get]
func (h *Handler) Clock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Clock(h.svc.Now()))
}

// Countdown handles GET /api/countdown.
//
//	@Summary		Recurring annual countdown
//	@Tags			live
//	@Produce		json
//	@Success		200	{object}	countdown.Snapshot
//	@Security		BearerAuth
//	@Router			/countdown [get]
func (h *Handler) Countdown(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Countdown(h.svc.Now()))
}

// ListCountdowns handles GET /api/countdowns.
//
//	@Summary		Rendered ad-hoc countdowns
//	@Tags			countdowns
//	@Produce		json
//	@Success		200	{object}	CountdownListResponse
//	@Security		BearerAuth
//	@Router			/countdowns [get]
func (h *Handler) ListCountdowns(w http.ResponseWriter, _ *http.Request) {
	rows := h.svc.Countdowns(h.svc.Now())
	writeJSON(w, http.StatusOK, CountdownListResponse{Countdowns: rows, Count: len(rows)})
}

// AddCountdown handles POST /api/countdowns.
//
//	@Summary		Add a countdown
//	@Tags			countdowns
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddCountdownRequest	true	"Countdown to add"
//	@Success		201		{object}	CountdownResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/countdowns [post]
func (h *Handler) AddCountdown(w http.ResponseWriter, r *http.Request) {
	var req AddCountdownRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.svc.AddCountdown(r.Context(), req.Name, req.Date)
	if err != nil {
		writeServiceError(w, err, "add countdown failed", slog.String("name", req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, CountdownResponse{Notice: dashboard.NoticeCountdownAdded, Countdown: c})
}

// DeleteCountdown handles DELETE /api/countdowns/{id}.
//
//	@Summary		Delete a countdown
//	@Tags			countdowns
//	@Param			id	path		string	true	"Countdown id"
//	@Success		200	{object}	NoticeResponse
//	@Security		BearerAuth
//	@Router			/countdowns/{id} [delete]
func (h *Handler) DeleteCountdown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCountdown(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete countdown failed", slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, NoticeResponse{Notice: dashboard.NoticeCountdownDeleted})
}

// ClearCountdowns handles DELETE /api/countdowns.
func (h *Handler) ClearCountdowns(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCountdowns(r.Context()); err != nil {
		writeServiceError(w, err, "clear countdowns failed")
		return
	}
	writeJSON(w, http.StatusOK, NoticeResponse{Notice: dashboard.NoticeCountdownsClear})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		Rendered note log
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	dashboard.NotesView
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Notes())
}

// AddNote handles POST /api/notes.
//
//	@Summary		Add a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddNoteRequest	true	"Note to add"
//	@Success		201		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := h.svc.AddNote(r.Context(), req.Author, req.Text, req.Reply)
	if err != nil {
		writeServiceError(w, err, "add note failed")
		return
	}
	writeJSON(w, http.StatusCreated, NoteResponse{Notice: dashboard.NoticeNoteAdded, Note: n})
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete note failed", slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, NoticeResponse{Notice: dashboard.NoticeNoteDeleted})
}

// ClearNotes handles DELETE /api/notes.
func (h *Handler) ClearNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearNotes(r.Context()); err != nil {
		writeServiceError(w, err, "clear notes failed")
		return
	}
	writeJSON(w, http.StatusOK, NoticeResponse{Notice: dashboard.NoticeNotesClear})
}

// GetAuthor handles GET /api/notes/author.
func (h *Handler) GetAuthor(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.authorResponse())
}

// SetAuthor handles PUT /api/notes/author.
//
//	@Summary		Switch the session author
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AuthorRequest	true	"Author"
//	@Success		200		{object}	AuthorResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/author [put]
func (h *Handler) SetAuthor(w http.ResponseWriter, r *http.Request) {
	var req AuthorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetAuthor(req.Author); err != nil {
		writeServiceError(w, err, "set author failed")
		return
	}
	writeJSON(w, http.StatusOK, h.authorResponse())
}

func (h *Handler) authorResponse() AuthorResponse {
	v := h.svc.Notes()
	return AuthorResponse{Author: v.Author, Label: v.Labels.For(v.Author)}
}

// Quote handles GET /api/quote. It always succeeds: a failed network fetch
// yields an offline quote.
//
//	@Summary		Fetch a quote
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	dashboard.QuoteView
//	@Security		BearerAuth
//	@Router			/quote [get]
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Quote(r.Context()))
}

// Prompt handles GET /api/prompt.
func (h *Handler) Prompt(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Prompt())
}

// GetPlaylist handles GET /api/playlist.
func (h *Handler) GetPlaylist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Playlist())
}

// SavePlaylist handles PUT /api/playlist.
//
//	@Summary		Save the playlist
//	@Tags			playlist
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlaylistRequest	true	"Playlist id or URL"
//	@Success		200		{object}	PlaylistResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/playlist [put]
func (h *Handler) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.SavePlaylist(r.Context(), req.Input)
	if err != nil {
		writeServiceError(w, err, "save playlist failed")
		return
	}
	writeJSON(w, http.StatusOK, PlaylistResponse{Notice: dashboard.NoticePlaylistSaved, ID: v.ID, EmbedURL: v.EmbedURL})
}

// ResetPlaylist handles DELETE /api/playlist.
func (h *Handler) ResetPlaylist(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.ResetPlaylist(r.Context())
	if err != nil {
		writeServiceError(w, err, "reset playlist failed")
		return
	}
	writeJSON(w, http.StatusOK, PlaylistResponse{Notice: dashboard.NoticePlaylistReset, ID: v.ID, EmbedURL: v.EmbedURL})
}
