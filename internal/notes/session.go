package notes

import (
	"sync"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/models"
)

// Session holds which party is authoring the next note. It lives only for
// the process lifetime.
type Session struct {
	mu     sync.RWMutex
	author models.Author
}

// NewSession starts a session with author selected. An unknown author falls
// back to models.AuthorPartner.
func NewSession(author models.Author) *Session {
	if !author.Valid() {
		author = models.AuthorPartner
	}
	return &Session{author: author}
}

// Author returns the selected author.
func (s *Session) Author() models.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.author
}

// SetAuthor selects author for subsequent notes.
func (s *Session) SetAuthor(author models.Author) error {
	if !author.Valid() {
		return apperr.ErrUnknownAuthor
	}
	s.mu.Lock()
	s.author = author
	s.mu.Unlock()
	return nil
}
