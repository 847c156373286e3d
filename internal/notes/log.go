// Package notes implements the two-party note log: paired note/reply
// entries attributed to one of two fixed authors.
package notes

import (
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/storage"
)

// Log is the persisted note log. Entries are newest-first and never edited.
type Log struct {
	coll   *storage.Collection[models.Note]
	src    *civiltime.Source
	ids    func() string
	labels Labels

	mu sync.Mutex
}

// New creates a Log. A nil ids uses storage.NewID.
func New(coll *storage.Collection[models.Note], src *civiltime.Source, ids func() string, labels Labels) *Log {
	if ids == nil {
		ids = storage.NewID
	}
	return &Log{coll: coll, src: src, ids: ids, labels: labels.withDefaults()}
}

// Add appends a note written by author. reply is optional.
func (l *Log) Add(author models.Author, text, reply string) (models.Note, error) {
	if !author.Valid() {
		return models.Note{}, apperr.ErrUnknownAuthor
	}
	text = strings.TrimSpace(text)
	reply = strings.TrimSpace(reply)
	if err := validation.Validate(text, validation.Required); err != nil {
		return models.Note{}, apperr.ErrMissingText
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := models.Note{
		ID:        l.ids(),
		Author:    author,
		Text:      text,
		Reply:     reply,
		CreatedAt: l.src.Now().UnixMilli(),
	}
	items := append([]models.Note{n}, l.coll.Load()...)
	if err := l.coll.Save(items); err != nil {
		return models.Note{}, fmt.Errorf("notes: save: %w", err)
	}
	return n, nil
}

// Remove deletes the note with id. An unknown id is a no-op.
func (l *Log) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.coll.Load()
	next := make([]models.Note, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	if len(next) == len(items) {
		return nil
	}
	if err := l.coll.Save(next); err != nil {
		return fmt.Errorf("notes: save: %w", err)
	}
	return nil
}

// ClearAll discards every note.
func (l *Log) ClearAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.coll.Clear(); err != nil {
		return fmt.Errorf("notes: clear: %w", err)
	}
	return nil
}

// List loads the stored notes, newest first.
func (l *Log) List() []models.Note {
	return l.coll.Load()
}

// Entries loads the stored notes and renders each one.
func (l *Log) Entries() []Entry {
	items := l.coll.Load()
	out := make([]Entry, len(items))
	for i, n := range items {
		out[i] = l.View(n)
	}
	return out
}

// Labels returns the display titles of both parties.
func (l *Log) Labels() Labels {
	return l.labels
}
