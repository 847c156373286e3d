package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is one computed state of a recurring countdown.
type Snapshot struct {
	Label     string    `json:"label"`
	Anchor    string    `json:"anchor"`
	Target    time.Time `json:"target"`
	Breakdown Breakdown `json:"breakdown"`
	Days      string    `json:"days"`
	Hours     string    `json:"hours"`
	Minutes   string    `json:"minutes"`
	Seconds   string    `json:"seconds"`
	Rolled    bool      `json:"rolled"`
}

// Tracker re-derives the target of an anchor on every tick and remembers the
// last one, so a year rollover during a live session is picked up.
type Tracker struct {
	anchor Anchor
	label  string

	mu     sync.Mutex
	target time.Time
}

// NewTracker creates a Tracker for anchor.
func NewTracker(anchor Anchor, label string) *Tracker {
	return &Tracker{anchor: anchor, label: label}
}

// Tick recomputes the target and remaining time against now. Rolled is set
// when the target differs from the previous tick's.
func (t *Tracker) Tick(now time.Time) Snapshot {
	next := NextOccurrence(t.anchor, now)

	t.mu.Lock()
	rolled := !t.target.IsZero() && !t.target.Equal(next)
	t.target = next
	t.mu.Unlock()

	b := Split(Remaining(next, now))
	return Snapshot{
		Label:     t.label,
		Anchor:    t.anchor.String(),
		Target:    next,
		Breakdown: b,
		Days:      fmt.Sprint(b.Days),
		Hours:     fmt.Sprintf("%02d", b.Hours),
		Minutes:   fmt.Sprintf("%02d", b.Minutes),
		Seconds:   fmt.Sprintf("%02d", b.Seconds),
		Rolled:    rolled,
	}
}
