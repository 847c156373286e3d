// Package countdowns manages the user's one-off countdowns to civil dates.
package countdowns

import (
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/countdown"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/storage"
)

// DateLayout is the accepted target date format.
const DateLayout = "2006-01-02"

// DoneLabel replaces the remaining time once a target has passed.
const DoneLabel = "done ✓"

// Row is the rendered state of one countdown.
type Row struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Date      string        `json:"date"`
	Target    time.Time     `json:"target"`
	Remaining time.Duration `json:"-"`
	Label     string        `json:"remaining"`
	Done      bool          `json:"done"`
}

// Set is the collection of ad-hoc countdowns. The store is the source of
// truth: every mutation reloads, changes and re-saves the whole sequence,
// while Tick only refreshes the remaining time of the last rendered rows.
type Set struct {
	coll *storage.Collection[models.Countdown]
	src  *civiltime.Source
	ids  func() string

	mu   sync.Mutex
	rows []Row
}

// New creates a Set. A nil ids uses storage.NewID.
func New(coll *storage.Collection[models.Countdown], src *civiltime.Source, ids func() string) *Set {
	if ids == nil {
		ids = storage.NewID
	}
	return &Set{coll: coll, src: src, ids: ids}
}

// Target returns date at civil midnight in loc.
func Target(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("countdowns: parse date %q: %w", date, err)
	}
	return t, nil
}

func validate(name, date string) error {
	if err := validation.Validate(name, validation.Required); err != nil {
		return apperr.ErrMissingName
	}
	if err := validation.Validate(date, validation.Required, validation.Date(DateLayout)); err != nil {
		return apperr.ErrMissingDate
	}
	return nil
}

// Add creates a countdown and prepends it. Invalid input leaves the store
// untouched.
func (s *Set) Add(name, date string) (models.Countdown, error) {
	name = strings.TrimSpace(name)
	date = strings.TrimSpace(date)
	if err := validate(name, date); err != nil {
		return models.Countdown{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.Countdown{
		ID:        s.ids(),
		Name:      name,
		Date:      date,
		CreatedAt: s.src.Now().UnixMilli(),
	}
	items := append([]models.Countdown{rec}, s.coll.Load()...)
	if err := s.coll.Save(items); err != nil {
		return models.Countdown{}, fmt.Errorf("countdowns: save: %w", err)
	}
	s.renderLocked()
	return rec, nil
}

// Remove deletes the countdown with id. An unknown id is a no-op.
func (s *Set) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.coll.Load()
	next := make([]models.Countdown, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	if len(next) != len(items) {
		if err := s.coll.Save(next); err != nil {
			return fmt.Errorf("countdowns: save: %w", err)
		}
	}
	s.renderLocked()
	return nil
}

// ClearAll discards the whole collection.
func (s *Set) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.coll.Clear(); err != nil {
		return fmt.Errorf("countdowns: clear: %w", err)
	}
	s.renderLocked()
	return nil
}

// Render rebuilds the rows from the store and ticks them once.
func (s *Set) Render() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked()
	return s.copyRows()
}

// Refresh rebuilds the rows from the store and ticks them against now.
func (s *Set) Refresh(now time.Time) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	s.tickLocked(now)
	return s.copyRows()
}

// Tick recomputes the remaining time of the rendered rows against now
// without reading the store.
func (s *Set) Tick(now time.Time) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked(now)
	return s.copyRows()
}

// Rows returns the rows as last rendered or ticked.
func (s *Set) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyRows()
}

func (s *Set) renderLocked() {
	s.loadLocked()
	s.tickLocked(s.src.Now())
}

func (s *Set) loadLocked() {
	items := s.coll.Load()
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{ID: it.ID, Name: it.Name, Date: it.Date}
		if t, err := Target(it.Date, s.src.Location()); err == nil {
			rows[i].Target = t
		}
	}
	s.rows = rows
}

func (s *Set) tickLocked(now time.Time) {
	for i := range s.rows {
		r := &s.rows[i]
		if r.Target.IsZero() {
			r.Label = "—"
			continue
		}
		if !r.Target.After(now) {
			r.Remaining = 0
			r.Done = true
			r.Label = DoneLabel
			continue
		}
		r.Remaining = countdown.Remaining(r.Target, now)
		r.Done = false
		r.Label = countdown.Split(r.Remaining).Short()
	}
}

func (s *Set) copyRows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}
