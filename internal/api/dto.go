package api

import (
	"github.com/starford/corner/internal/countdowns"
	"github.com/starford/corner/internal/models"
)

// AddCountdownRequest is the request body for adding a countdown.
type AddCountdownRequest struct {
	Name string `json:"name" example:"Trip" validate:"required"`
	Date string `json:"date" example:"2025-11-10" validate:"required"`
}

// AddNoteRequest is the request body for adding a note. An empty author
// uses the session author.
type AddNoteRequest struct {
	Author models.Author `json:"author,omitempty" example:"me"`
	Text   string        `json:"text" example:"Dinner at 8?" validate:"required"`
	Reply  string        `json:"reply,omitempty" example:"Yes!"`
}

// AuthorRequest is the request body for switching the session author.
type AuthorRequest struct {
	Author models.Author `json:"author" example:"kunjus" validate:"required"`
}

// PlaylistRequest is the request body for saving a playlist.
type PlaylistRequest struct {
	Input string `json:"input" example:"https://www.youtube.com/playlist?list=PL123" validate:"required"`
}

// NoticeResponse carries the notice shown after a mutation.
type NoticeResponse struct {
	Notice string `json:"notice" example:"Countdown deleted" validate:"required"`
}

// CountdownListResponse wraps the rendered countdown rows.
type CountdownListResponse struct {
	Countdowns []countdowns.Row `json:"countdowns" validate:"required"`
	Count      int              `json:"count" example:"2" validate:"required"`
}

// CountdownResponse is returned after adding a countdown.
type CountdownResponse struct {
	Notice    string           `json:"notice" example:"Countdown added" validate:"required"`
	Countdown models.Countdown `json:"countdown" validate:"required"`
}

// NoteResponse is returned after adding a note.
type NoteResponse struct {
	Notice string      `json:"notice" example:"Note added" validate:"required"`
	Note   models.Note `json:"note" validate:"required"`
}

// AuthorResponse describes the session author.
type AuthorResponse struct {
	Author models.Author `json:"author" example:"kunjus" validate:"required"`
	Label  string        `json:"label" example:"Kunjus" validate:"required"`
}

// PlaylistResponse is returned after saving or resetting the playlist.
type PlaylistResponse struct {
	Notice   string `json:"notice" example:"Playlist saved" validate:"required"`
	ID       string `json:"id" example:"PL123" validate:"required"`
	EmbedURL string `json:"embed_url" validate:"required"`
}
