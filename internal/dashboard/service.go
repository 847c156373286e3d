// Package dashboard coordinates the dashboard components behind one service
// shared by the HTTP API and the MCP server.
package dashboard

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/countdown"
	"github.com/starford/corner/internal/countdowns"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/notes"
	"github.com/starford/corner/internal/playlist"
	"github.com/starford/corner/internal/quote"
	"github.com/starford/corner/internal/sse"
)

// Notices shown after a successful mutation.
const (
	NoticeCountdownAdded   = "Countdown added"
	NoticeCountdownDeleted = "Countdown deleted"
	NoticeCountdownsClear  = "Saved countdowns cleared"
	NoticeNoteAdded        = "Note added"
	NoticeNoteDeleted      = "Note deleted"
	NoticeNotesClear       = "All notes cleared"
	NoticePlaylistSaved    = "Playlist saved"
	NoticePlaylistReset    = "Playlist reset"
	NoticeCopied           = "Copied ✓"
)

// Collection names used in change events.
const (
	CollectionCountdowns = "countdowns"
	CollectionNotes      = "notes"
)

// Change operations used in change events.
const (
	OpAdded    = "added"
	OpDeleted  = "deleted"
	OpCleared  = "cleared"
	OpReloaded = "reloaded"
)

// Publisher receives live dashboard events. *sse.Broker satisfies it.
type Publisher interface {
	Publish(event sse.Event)
	PublishChange(collection, op, id string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event)                    {}
func (nopPublisher) PublishChange(string, string, string) {}

// Components are the collaborators of a Service. Events and Pick are
// optional: nil Events drops events and nil Pick uses math/rand.
type Components struct {
	Clock      *civiltime.Source
	Tracker    *countdown.Tracker
	Countdowns *countdowns.Set
	Notes      *notes.Log
	Session    *notes.Session
	Quotes     *quote.Fetcher
	Playlist   *playlist.Store
	Events     Publisher
	Pick       func(n int) int
}

// ClockView is the civil clock at one instant.
type ClockView struct {
	Now   time.Time `json:"now"`
	Time  string    `json:"time"`
	Label string    `json:"label"`
	Zone  string    `json:"zone"`
}

// NotesView is the rendered note log with the session author.
type NotesView struct {
	Entries []notes.Entry `json:"entries"`
	Count   int           `json:"count"`
	Author  models.Author `json:"author"`
	Labels  notes.Labels  `json:"labels"`
}

// QuoteView is a fetched quote with its display strings.
type QuoteView struct {
	models.Quote
	Meta string `json:"meta"`
	Copy string `json:"copy"`
}

// PlaylistView is the selected playlist.
type PlaylistView struct {
	ID       string `json:"id"`
	EmbedURL string `json:"embed_url"`
}

// Service coordinates the dashboard components.
type Service struct {
	clock      *civiltime.Source
	tracker    *countdown.Tracker
	countdowns *countdowns.Set
	notes      *notes.Log
	session    *notes.Session
	quotes     *quote.Fetcher
	playlist   *playlist.Store
	events     Publisher
	pick       func(n int) int
}

// NewService creates a dashboard service.
func NewService(c Components) *Service {
	s := &Service{
		clock:      c.Clock,
		tracker:    c.Tracker,
		countdowns: c.Countdowns,
		notes:      c.Notes,
		session:    c.Session,
		quotes:     c.Quotes,
		playlist:   c.Playlist,
		events:     c.Events,
		pick:       c.Pick,
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.pick == nil {
		s.pick = rand.IntN
	}
	if s.session == nil {
		s.session = notes.NewSession(models.AuthorPartner)
	}
	return s
}

// Now returns the current civil instant.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Clock returns the civil clock at now.
func (s *Service) Clock(now time.Time) ClockView {
	now = s.clock.In(now)
	zone, _ := now.Zone()
	return ClockView{
		Now:   now,
		Time:  civiltime.Clock(now),
		Label: civiltime.Label(now),
		Zone:  zone,
	}
}

// Countdown returns the recurring countdown at now.
func (s *Service) Countdown(now time.Time) countdown.Snapshot {
	return s.tracker.Tick(now)
}

// Countdowns re-reads the stored countdowns and returns their rows at now.
// Another process may share the store, so the last render is not trusted.
func (s *Service) Countdowns(now time.Time) []countdowns.Row {
	return s.countdowns.Refresh(now)
}

// AddCountdown stores a new countdown.
func (s *Service) AddCountdown(_ context.Context, name, date string) (models.Countdown, error) {
	c, err := s.countdowns.Add(name, date)
	if err != nil {
		return models.Countdown{}, err
	}
	s.events.PublishChange(CollectionCountdowns, OpAdded, c.ID)
	return c, nil
}

// DeleteCountdown removes the countdown with id.
func (s *Service) DeleteCountdown(_ context.Context, id string) error {
	if err := s.countdowns.Remove(id); err != nil {
		return err
	}
	s.events.PublishChange(CollectionCountdowns, OpDeleted, id)
	return nil
}

// ClearCountdowns removes every countdown.
func (s *Service) ClearCountdowns(_ context.Context) error {
	if err := s.countdowns.ClearAll(); err != nil {
		return err
	}
	s.events.PublishChange(CollectionCountdowns, OpCleared, "")
	return nil
}

// ReloadCountdowns re-renders countdowns from the store after an external
// change.
func (s *Service) ReloadCountdowns() {
	s.countdowns.Render()
	s.events.PublishChange(CollectionCountdowns, OpReloaded, "")
}

// Notes returns the rendered note log.
func (s *Service) Notes() NotesView {
	entries := s.notes.Entries()
	return NotesView{
		Entries: entries,
		Count:   len(entries),
		Author:  s.session.Author(),
		Labels:  s.notes.Labels(),
	}
}

// AddNote stores a note. An empty author uses the session author.
func (s *Service) AddNote(_ context.Context, author models.Author, text, reply string) (models.Note, error) {
	if author == "" {
		author = s.session.Author()
	}
	n, err := s.notes.Add(author, text, reply)
	if err != nil {
		return models.Note{}, err
	}
	s.events.PublishChange(CollectionNotes, OpAdded, n.ID)
	return n, nil
}

// DeleteNote removes the note with id.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	if err := s.notes.Remove(id); err != nil {
		return err
	}
	s.events.PublishChange(CollectionNotes, OpDeleted, id)
	return nil
}

// ClearNotes removes every note.
func (s *Service) ClearNotes(_ context.Context) error {
	if err := s.notes.ClearAll(); err != nil {
		return err
	}
	s.events.PublishChange(CollectionNotes, OpCleared, "")
	return nil
}

// ReloadNotes announces an external change of the note log.
func (s *Service) ReloadNotes() {
	s.events.PublishChange(CollectionNotes, OpReloaded, "")
}

// Author returns the session author.
func (s *Service) Author() models.Author {
	return s.session.Author()
}

// SetAuthor changes the session author.
func (s *Service) SetAuthor(author models.Author) error {
	return s.session.SetAuthor(author)
}

// Quote fetches a quote, falling back to the offline pool.
func (s *Service) Quote(ctx context.Context) QuoteView {
	q := s.quotes.Fetch(ctx)
	v := QuoteView{Quote: q, Meta: quote.Meta(q), Copy: quote.CopyText(q)}
	s.events.Publish(sse.Event{Type: sse.TypeQuoteUpdated, Data: v})
	return v
}

// Prompt draws a prompt and a mission.
func (s *Service) Prompt() quote.Prompt {
	return quote.Shuffle(s.pick)
}

// Playlist returns the selected playlist.
func (s *Service) Playlist() PlaylistView {
	return playlistView(s.playlist.Current())
}

// SavePlaylist selects the playlist in input.
func (s *Service) SavePlaylist(_ context.Context, input string) (PlaylistView, error) {
	id, err := s.playlist.Set(input)
	if err != nil {
		return PlaylistView{}, err
	}
	return s.publishPlaylist(id), nil
}

// ResetPlaylist restores the default playlist.
func (s *Service) ResetPlaylist(_ context.Context) (PlaylistView, error) {
	id, err := s.playlist.Reset()
	if err != nil {
		return PlaylistView{}, err
	}
	return s.publishPlaylist(id), nil
}

// ReloadPlaylist announces an external change of the playlist selection.
func (s *Service) ReloadPlaylist() {
	s.publishPlaylist(s.playlist.Current())
}

func (s *Service) publishPlaylist(id string) PlaylistView {
	v := playlistView(id)
	s.events.Publish(sse.Event{Type: sse.TypePlaylistUpdated, Data: v})
	return v
}

func playlistView(id string) PlaylistView {
	return PlaylistView{ID: id, EmbedURL: playlist.EmbedURL(id)}
}

// TickClock publishes the clock at now.
func (s *Service) TickClock(_ context.Context, now time.Time) {
	s.events.Publish(sse.Event{Type: sse.TypeClockTick, Data: s.Clock(now)})
}

// TickCountdown publishes the recurring countdown at now.
func (s *Service) TickCountdown(_ context.Context, now time.Time) {
	s.events.Publish(sse.Event{Type: sse.TypeCountdownTick, Data: s.Countdown(now)})
}

// TickCountdowns publishes the countdown rows at now.
func (s *Service) TickCountdowns(_ context.Context, now time.Time) {
	s.events.Publish(sse.Event{Type: sse.TypeCountdownsTick, Data: s.countdowns.Tick(now)})
}

// Page is everything the dashboard page renders.
type Page struct {
	Clock      ClockView
	Countdown  countdown.Snapshot
	Countdowns []countdowns.Row
	Notes      NotesView
	Playlist   PlaylistView
	Quote      QuoteView
	Prompt     quote.Prompt
}

// Page assembles the dashboard at now. The quote is the offline one so the
// page never waits on the network; clients fetch a live one afterwards.
func (s *Service) Page(now time.Time) Page {
	q := s.quotes.Offline()
	return Page{
		Clock:      s.Clock(now),
		Countdown:  s.Countdown(now),
		Countdowns: s.Countdowns(now),
		Notes:      s.Notes(),
		Playlist:   s.Playlist(),
		Quote:      QuoteView{Quote: q, Meta: quote.Meta(q), Copy: quote.CopyText(q)},
		Prompt:     s.Prompt(),
	}
}
