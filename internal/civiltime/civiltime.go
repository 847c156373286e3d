// Package civiltime produces "now" in a fixed civil timezone, independent of
// the host's local timezone setting.
package civiltime

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// DefaultZone is the civil timezone used when none is configured.
const DefaultZone = "Asia/Kolkata"

// Source reads the real-time clock and expresses it in a fixed location.
type Source struct {
	loc   *time.Location
	clock func() time.Time
}

// New creates a Source for loc. A nil clock uses time.Now.
func New(loc *time.Location, clock func() time.Time) *Source {
	if clock == nil {
		clock = time.Now
	}
	return &Source{loc: loc, clock: clock}
}

// LoadLocation resolves an IANA zone name.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("civiltime: load zone %q: %w", name, err)
	}
	return loc, nil
}

// Now returns the current instant in the civil zone.
func (s *Source) Now() time.Time {
	return s.clock().In(s.loc)
}

// In converts an arbitrary instant to the civil zone.
func (s *Source) In(t time.Time) time.Time {
	return t.In(s.loc)
}

// Location returns the civil zone.
func (s *Source) Location() *time.Location {
	return s.loc
}

// Civil is the calendar/clock decomposition of an instant.
type Civil struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
	Second int        `json:"second"`
}

// Fields decomposes t in its own location.
func Fields(t time.Time) Civil {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return Civil{Year: y, Month: m, Day: d, Hour: hh, Minute: mm, Second: ss}
}

// Clock formats t as HH:MM.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// Label formats t as "<zone abbreviation> • HH:MM".
func Label(t time.Time) string {
	abbr, _ := t.Zone()
	return abbr + " • " + Clock(t)
}
