// Package countdown computes the next occurrence of a yearly civil date and
// the time remaining until it.
package countdown

import (
	"fmt"
	"time"
)

// Anchor is a yearly recurring date at civil midnight.
type Anchor struct {
	Month time.Month
	Day   int
}

// ParseAnchor parses "MM-DD".
func ParseAnchor(s string) (Anchor, error) {
	var m, d int
	if _, err := fmt.Sscanf(s, "%d-%d", &m, &d); err != nil {
		return Anchor{}, fmt.Errorf("countdown: parse anchor %q: %w", s, err)
	}
	a := Anchor{Month: time.Month(m), Day: d}
	if err := a.Validate(); err != nil {
		return Anchor{}, err
	}
	return a, nil
}

// Validate checks the month/day against a leap year, so Feb 29 is accepted.
func (a Anchor) Validate() error {
	if a.Month < time.January || a.Month > time.December {
		return fmt.Errorf("countdown: invalid month %d", a.Month)
	}
	check := time.Date(2024, a.Month, a.Day, 0, 0, 0, 0, time.UTC)
	if a.Day < 1 || check.Month() != a.Month {
		return fmt.Errorf("countdown: invalid day %d for %s", a.Day, a.Month)
	}
	return nil
}

// String formats the anchor as "MM-DD".
func (a Anchor) String() string {
	return fmt.Sprintf("%02d-%02d", int(a.Month), a.Day)
}

// In returns the anchor's midnight in year, in loc.
// Feb 29 in a non-leap year normalizes to Mar 1.
func (a Anchor) In(year int, loc *time.Location) time.Time {
	return time.Date(year, a.Month, a.Day, 0, 0, 0, 0, loc)
}

// NextOccurrence returns the nearest anchor midnight strictly after now,
// in now's location. When now is exactly at this year's midnight the
// following year's occurrence is returned. A 02-29 anchor yields 1 March in
// non-leap years, so the result's month and day can differ from the anchor's.
func NextOccurrence(a Anchor, now time.Time) time.Time {
	target := a.In(now.Year(), now.Location())
	if !target.After(now) {
		target = a.In(now.Year()+1, now.Location())
	}
	return target
}

// Remaining returns target-now, floored at zero.
func Remaining(target, now time.Time) time.Duration {
	d := target.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Breakdown is a duration split into whole units.
type Breakdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Split decomposes d by integer division on its whole seconds. Negative
// durations split as zero.
func Split(d time.Duration) Breakdown {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return Breakdown{
		Days:    secs / 86400,
		Hours:   (secs % 86400) / 3600,
		Minutes: (secs % 3600) / 60,
		Seconds: secs % 60,
	}
}

// TotalSeconds sums the breakdown back into seconds.
func (b Breakdown) TotalSeconds() int64 {
	return b.Days*86400 + b.Hours*3600 + b.Minutes*60 + b.Seconds
}

// Short formats as "Nd HHh MMm".
func (b Breakdown) Short() string {
	return fmt.Sprintf("%dd %02dh %02dm", b.Days, b.Hours, b.Minutes)
}
