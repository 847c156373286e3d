package countdowns

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func testSet(t *testing.T, now time.Time) (*Set, *storage.Collection[models.Countdown], *fakeClock) {
	t.Helper()
	loc, err := civiltime.LoadLocation(civiltime.DefaultZone)
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{now: now.In(loc)}
	src := civiltime.New(loc, clock.Now)
	coll := storage.NewCollection[models.Countdown](storage.NewMemory(), "kunjus_countdowns_v1", nil)
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return New(coll, src, ids), coll, clock
}

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestAdd_TripScenario(t *testing.T) {
	loc := ist(t)
	// 2 days and 3 hours before 2026-10-17 00:00 IST.
	now := time.Date(2026, 10, 14, 21, 0, 0, 0, loc)
	set, _, clock := testSet(t, now)

	if _, err := set.Add("Trip", "2026-10-17"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	rows := set.Tick(clock.now)
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Label != "2d 03h 00m" {
		t.Errorf("label = %q, want 2d 03h 00m", rows[0].Label)
	}

	// 30 seconds later minutes are rounded down, never up.
	rows = set.Tick(clock.now.Add(30 * time.Second))
	if rows[0].Label != "2d 02h 59m" {
		t.Errorf("label after 30s = %q, want 2d 02h 59m", rows[0].Label)
	}
}

func TestAdd_PrependsAndPersists(t *testing.T) {
	set, coll, _ := testSet(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	_, _ = set.Add("First", "2026-05-01")
	_, _ = set.Add("  Second  ", " 2026-06-01 ")

	stored := coll.Load()
	if len(stored) != 2 {
		t.Fatalf("stored = %d", len(stored))
	}
	if stored[0].Name != "Second" || stored[0].Date != "2026-06-01" {
		t.Errorf("newest-first violated or not trimmed: %+v", stored[0])
	}
	if stored[1].ID != "id-1" {
		t.Errorf("oldest id = %q", stored[1].ID)
	}
	if len(set.Rows()) != 2 {
		t.Errorf("rows not re-rendered after add")
	}
}

func TestAdd_Validation(t *testing.T) {
	set, coll, _ := testSet(t, time.Now())
	_, _ = set.Add("Keep", "2030-01-01")

	cases := []struct {
		name, date string
		want       error
	}{
		{"", "2030-01-01", apperr.ErrMissingName},
		{"   ", "2030-01-01", apperr.ErrMissingName},
		{"Party", "", apperr.ErrMissingDate},
		{"Party", "  ", apperr.ErrMissingDate},
		{"Party", "31/12/2030", apperr.ErrMissingDate},
		{"Party", "2030-02-30", apperr.ErrMissingDate},
	}
	for _, tc := range cases {
		_, err := set.Add(tc.name, tc.date)
		if !errors.Is(err, tc.want) {
			t.Errorf("Add(%q, %q) = %v, want %v", tc.name, tc.date, err, tc.want)
		}
	}
	if got := coll.Load(); len(got) != 1 || got[0].Name != "Keep" {
		t.Errorf("store changed by rejected input: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	set, coll, _ := testSet(t, time.Now())
	a, _ := set.Add("A", "2030-01-01")
	_, _ = set.Add("B", "2030-01-02")

	if err := set.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got := coll.Load()
	if len(got) != 1 || got[0].Name != "B" {
		t.Errorf("after remove = %+v", got)
	}

	if err := set.Remove("missing"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if got := coll.Load(); len(got) != 1 {
		t.Errorf("remove of unknown id changed store: %+v", got)
	}
}

func TestClearAll(t *testing.T) {
	set, coll, _ := testSet(t, time.Now())
	_, _ = set.Add("A", "2030-01-01")
	if err := set.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if got := coll.Load(); len(got) != 0 {
		t.Errorf("Load after ClearAll = %+v", got)
	}
	if rows := set.Render(); len(rows) != 0 {
		t.Errorf("rows after ClearAll = %+v", rows)
	}
}

func TestTick_DoneWhenPassed(t *testing.T) {
	loc := ist(t)
	set, _, clock := testSet(t, time.Date(2026, 3, 1, 23, 59, 0, 0, loc))
	_, _ = set.Add("Tomorrow", "2026-03-02")

	rows := set.Tick(clock.now)
	if rows[0].Done || rows[0].Label != "0d 00h 01m" {
		t.Errorf("before target = %+v", rows[0])
	}
	rows = set.Tick(time.Date(2026, 3, 2, 0, 0, 0, 0, loc))
	if !rows[0].Done || rows[0].Label != DoneLabel {
		t.Errorf("at target = %+v", rows[0])
	}
	if rows[0].Remaining != 0 {
		t.Errorf("remaining = %v, want 0", rows[0].Remaining)
	}
}

func TestTick_DoesNotReadStore(t *testing.T) {
	set, coll, clock := testSet(t, time.Now())
	_, _ = set.Add("A", "2030-01-01")

	// An external write is only picked up by the next Render.
	_ = coll.Save(nil)
	if rows := set.Tick(clock.now); len(rows) != 1 {
		t.Errorf("Tick reloaded from store: %+v", rows)
	}
	if rows := set.Render(); len(rows) != 0 {
		t.Errorf("Render did not reload: %+v", rows)
	}
}

func TestTarget_CivilMidnight(t *testing.T) {
	loc := ist(t)
	got, err := Target("2026-11-10", loc)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2026, 11, 9, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("Target = %v", got.UTC())
	}
}

func TestTickVersusRefresh(t *testing.T) {
	loc := ist(t)
	now := time.Date(2026, 10, 14, 21, 0, 0, 0, loc)
	set, coll, _ := testSet(t, now)
	set.Render()

	external := []models.Countdown{{ID: "ext", Name: "Trip", Date: "2026-10-17"}}
	if err := coll.Save(external); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if rows := set.Tick(now); len(rows) != 0 {
		t.Errorf("Tick read the store: %+v", rows)
	}
	rows := set.Refresh(now.Add(time.Hour))
	if len(rows) != 1 || rows[0].ID != "ext" {
		t.Fatalf("Refresh rows = %+v", rows)
	}
	if rows[0].Label != "2d 02h 00m" {
		t.Errorf("label = %q, want 2d 02h 00m", rows[0].Label)
	}
}
