// Package playlist resolves user input to an embeddable playlist id and
// persists the selection.
package playlist

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/storage"
)

// DefaultID is used until the user saves a playlist.
const DefaultID = "PLoTn6R_eiyqdKUJDcZzNFGvaPPOw3QshW&si=qpOgmABLRrrTmy7-"

const embedBase = "https://www.youtube-nocookie.com/embed/videoseries"

var (
	bareIDRe    = regexp.MustCompile(`^PL[a-zA-Z0-9_-]{10,}$`)
	listParamRe = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
)

// ExtractID accepts a bare playlist id or a URL with a list= parameter.
// Unrecognised input is returned verbatim (trimmed).
func ExtractID(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if bareIDRe.MatchString(s) {
		return s
	}
	if m := listParamRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// EmbedURL returns the privacy-enhanced embed URL for id.
func EmbedURL(id string) string {
	return fmt.Sprintf("%s?list=%s", embedBase, url.QueryEscape(id))
}

// Store persists the selected playlist id.
type Store struct {
	scalar *storage.Scalar
}

// NewStore wraps scalar.
func NewStore(scalar *storage.Scalar) *Store {
	return &Store{scalar: scalar}
}

// Current returns the saved id or the default.
func (s *Store) Current() string {
	return s.scalar.Load()
}

// Set resolves input and saves the result.
func (s *Store) Set(input string) (string, error) {
	id := ExtractID(input)
	if id == "" {
		return "", apperr.ErrMissingPlaylist
	}
	if err := s.scalar.Save(id); err != nil {
		return "", fmt.Errorf("playlist: save: %w", err)
	}
	return id, nil
}

// Reset stores the default id again.
func (s *Store) Reset() (string, error) {
	def := s.scalar.Default()
	if err := s.scalar.Save(def); err != nil {
		return "", fmt.Errorf("playlist: reset: %w", err)
	}
	return def, nil
}
