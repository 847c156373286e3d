// Package testutil provides shared test helpers for wiring a dashboard over
// temporary stores.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/countdown"
	"github.com/starford/corner/internal/countdowns"
	"github.com/starford/corner/internal/dashboard"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/notes"
	"github.com/starford/corner/internal/playlist"
	"github.com/starford/corner/internal/quote"
	"github.com/starford/corner/internal/sse"
	"github.com/starford/corner/internal/storage"
)

// Store keys used by fixtures.
const (
	CountdownsKey = "kunjus_countdowns_v1"
	NotesKey      = "kunjus_notes_v1"
	PlaylistKey   = "kunjus_playlist_v1"
)

// TestFS creates a temporary FS store directory.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestSQLite creates a temporary SQLite store that is closed on cleanup.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "corner-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// India returns the Asia/Kolkata location.
func India(t *testing.T) *time.Location {
	t.Helper()
	loc, err := civiltime.LoadLocation(civiltime.DefaultZone)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

// Clock is a settable clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Recorder collects published events.
type Recorder struct {
	mu      sync.Mutex
	events  []sse.Event
	changes []string
}

// Publish records event.
func (r *Recorder) Publish(event sse.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// PublishChange records "<collection>.<op>".
func (r *Recorder) PublishChange(collection, op, _ string) {
	r.mu.Lock()
	r.changes = append(r.changes, collection+"."+op)
	r.mu.Unlock()
}

// Types returns the types of recorded events in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns the recorded events.
func (r *Recorder) Events() []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sse.Event(nil), r.events...)
}

// Changes returns the recorded changes in order.
func (r *Recorder) Changes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changes...)
}

// Fixture is a dashboard wired over one store.
type Fixture struct {
	Store   storage.Provider
	Clock   *Clock
	Events  *Recorder
	Service *dashboard.Service
}

// NewFixture wires a dashboard over store with the clock at now, a birthday
// anchor of 10 November and quotes fetched from quoteURL.
func NewFixture(t *testing.T, store storage.Provider, now time.Time, quoteURL string) *Fixture {
	t.Helper()

	clock := &Clock{now: now}
	src := civiltime.New(India(t), clock.Now)
	rec := &Recorder{}

	set := countdowns.New(storage.NewCollection[models.Countdown](store, CountdownsKey, nil), src, nil)
	set.Render()

	svc := dashboard.NewService(dashboard.Components{
		Clock:      src,
		Tracker:    countdown.NewTracker(countdown.Anchor{Month: time.November, Day: 10}, "Birthday"),
		Countdowns: set,
		Notes:      notes.New(storage.NewCollection[models.Note](store, NotesKey, nil), src, nil, notes.Labels{}),
		Session:    notes.NewSession(models.AuthorPartner),
		Quotes:     quote.New(quote.WithURL(quoteURL), quote.WithTimeout(time.Second), quote.WithPicker(func(int) int { return 0 })),
		Playlist:   playlist.NewStore(storage.NewScalar(store, PlaylistKey, playlist.DefaultID)),
		Events:     rec,
		Pick:       func(int) int { return 0 },
	})

	return &Fixture{Store: store, Clock: clock, Events: rec, Service: svc}
}
