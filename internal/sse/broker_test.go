package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// settle returns once every operation sent before it has run.
func settle(b *Broker) { b.ClientCount() }

// drain collects the frames queued on ch without waiting for more.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countType(frames []string, typ string) int {
	n := 0
	for _, f := range frames {
		if strings.HasPrefix(f, "event: "+typ+"\n") {
			n++
		}
	}
	return n
}

func TestTabsJoinAndLeave(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	first, second := b.Subscribe(), b.Subscribe()
	if n := b.ClientCount(); n != 2 {
		t.Fatalf("tabs = %d, want 2", n)
	}
	b.Unsubscribe(first)
	if _, ok := <-first; ok {
		t.Error("unsubscribed channel should be closed")
	}
	b.Unsubscribe(second)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("tabs after leaving = %d, want 0", n)
	}
}

func TestClockTickFrame(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeClockTick, Data: map[string]string{"label": "IST • 14:05"}})

	select {
	case msg := <-ch:
		want := "event: clock.tick\ndata: {\"label\":\"IST • 14:05\"}\n\n"
		if string(msg) != want {
			t.Errorf("frame = %q, want %q", msg, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for clock tick")
	}
}

func TestLateTabGetsLatestValues(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	b.Publish(Event{Type: TypeClockTick, Data: "14:04"})
	b.Publish(Event{Type: TypeCountdownTick, Data: "1d"})
	b.Publish(Event{Type: TypeClockTick, Data: "14:05"})

	ch := b.Subscribe()
	settle(b)
	frames := drain(ch)
	if len(frames) != 2 {
		t.Fatalf("replayed frames = %q, want 2", frames)
	}
	if !strings.Contains(frames[0], `"14:05"`) || countType(frames[:1], TypeClockTick) != 1 {
		t.Errorf("first replay = %q, want latest clock tick", frames[0])
	}
	if countType(frames[1:], TypeCountdownTick) != 1 {
		t.Errorf("second replay = %q, want countdown tick", frames[1])
	}
}

func TestChangeBurst_ThrottlesDashboardAndFlushesTail(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange("countdowns", "added", "a1")
	b.PublishChange("countdowns", "added", "a2")
	b.PublishChange("notes", "deleted", "n1")
	settle(b)

	burst := drain(ch)
	if got := countType(burst, "countdowns.changed"); got != 2 {
		t.Errorf("countdowns.changed = %d, want 2", got)
	}
	if got := countType(burst, "notes.changed"); got != 1 {
		t.Errorf("notes.changed = %d, want 1", got)
	}
	if got := countType(burst, TypeDashboard); got != 1 {
		t.Fatalf("dashboard.changed during burst = %d, want 1", got)
	}
	if !strings.Contains(burst[0], `{"op":"added","id":"a1"}`) {
		t.Errorf("first change frame = %q", burst[0])
	}

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: "+TypeDashboard) || !strings.Contains(s, `{"collections":["countdowns","notes"]}`) {
			t.Errorf("trailing frame = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("burst tail never produced dashboard.changed")
	}

	time.Sleep(150 * time.Millisecond)
	if extra := drain(ch); len(extra) != 0 {
		t.Errorf("quiet broker sent %q", extra)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Publish(Event{Type: TypeCountdownsTick, Data: []string{"2d 03h 00m"}})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "event: countdowns.tick") {
		t.Errorf("handler output missing event: %q", body)
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("tab not removed after disconnect, count = %d", n)
	}
}

func TestSlowTabDoesNotBlockTicks(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: TypeCountdownTick, Data: map[string]string{"seconds": "01"}})
	}
	settle(b)
	if got := len(drain(ch)); got != 64 {
		t.Errorf("buffered frames = %d, want 64", got)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("tabs after close = %d", n)
	}
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}
	b.Publish(Event{Type: TypeQuoteUpdated, Data: map[string]string{"text": "x"}})
	b.PublishChange("notes", "added", "x")
}
