// Package models defines the domain types for the dashboard.
package models

import "time"

// Countdown is a user-created one-off countdown to a civil date.
type Countdown struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"` // YYYY-MM-DD, counted to civil midnight
	CreatedAt int64  `json:"createdAt"`
}

// Created returns CreatedAt as a time.Time.
func (c Countdown) Created() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Author identifies one of the two parties writing notes.
type Author string

const (
	AuthorPartner Author = "kunjus"
	AuthorSelf    Author = "me"
)

// Valid reports whether a is one of the two known parties.
func (a Author) Valid() bool {
	return a == AuthorPartner || a == AuthorSelf
}

// Counterpart returns the other party.
func (a Author) Counterpart() Author {
	if a == AuthorPartner {
		return AuthorSelf
	}
	return AuthorPartner
}

// Note is a paired note/reply entry. It is never edited after creation.
type Note struct {
	ID        string `json:"id"`
	Author    Author `json:"author"`
	Text      string `json:"text"`
	Reply     string `json:"reply"`
	CreatedAt int64  `json:"createdAt"`
}

// Created returns CreatedAt as a time.Time.
func (n Note) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Quote is one displayed quote. SourceLabel is empty for offline picks.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
	SourceLabel string `json:"source_label"`
}
