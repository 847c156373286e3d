// Package sse pushes live dashboard values to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"
)

// Event types published by the dashboard.
const (
	TypeClockTick       = "clock.tick"
	TypeCountdownTick   = "countdown.tick"
	TypeCountdownsTick  = "countdowns.tick"
	TypeQuoteUpdated    = "quote.updated"
	TypePlaylistUpdated = "playlist.updated"
	TypeDashboard       = "dashboard.changed"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Change is the payload of a "<collection>.changed" event.
type Change struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

// Summary is the payload of dashboard.changed: the collections mutated since
// the previous one.
type Summary struct {
	Collections []string `json:"collections"`
}

func frame(e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// hub is the broker state. Only the run loop touches it.
type hub struct {
	throttle time.Duration

	clients map[chan []byte]struct{}

	// latest frame per published type, replayed to tabs that join between ticks
	latest map[string][]byte
	order  []string

	pending  map[string]struct{}
	lastDash time.Time
	flush    *time.Timer
}

func (h *hub) send(raw []byte) {
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// slow tab; it catches up on the next tick
		}
	}
}

func (h *hub) subscribe(ch chan []byte) {
	h.clients[ch] = struct{}{}
	for _, typ := range h.order {
		select {
		case ch <- h.latest[typ]:
		default:
		}
	}
}

func (h *hub) unsubscribe(ch chan []byte) {
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) publish(e Event) {
	raw, err := frame(e)
	if err != nil {
		return
	}
	if _, seen := h.latest[e.Type]; !seen {
		h.order = append(h.order, e.Type)
	}
	h.latest[e.Type] = raw
	h.send(raw)
}

// change broadcasts the collection event at once. dashboard.changed goes out
// immediately when the throttle window has passed, otherwise once at the end
// of the window, naming every collection changed since the last one.
func (h *hub) change(collection, op, id string, now time.Time) {
	if raw, err := frame(Event{Type: collection + ".changed", Data: Change{Op: op, ID: id}}); err == nil {
		h.send(raw)
	}
	h.pending[collection] = struct{}{}

	wait := h.throttle - now.Sub(h.lastDash)
	if wait <= 0 {
		h.summarize(now)
		return
	}
	if h.flush == nil {
		h.flush = time.NewTimer(wait)
	}
}

func (h *hub) summarize(now time.Time) {
	if h.flush != nil {
		h.flush.Stop()
		h.flush = nil
	}
	if len(h.pending) == 0 {
		return
	}
	cols := make([]string, 0, len(h.pending))
	for c := range h.pending {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	clear(h.pending)
	h.lastDash = now

	if raw, err := frame(Event{Type: TypeDashboard, Data: Summary{Collections: cols}}); err == nil {
		h.send(raw)
	}
}

func (h *hub) flushC() <-chan time.Time {
	if h.flush == nil {
		return nil
	}
	return h.flush.C
}

// Broker fans dashboard events out to connected tabs. A single loop owns the
// hub; every public method is an operation sent to that loop, so operations
// apply in call order.
type Broker struct {
	ops     chan func(*hub)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits at most one dashboard.changed event
// per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		ops:     make(chan func(*hub)),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	h := &hub{
		throttle: throttle,
		clients:  make(map[chan []byte]struct{}),
		latest:   make(map[string][]byte),
		pending:  make(map[string]struct{}),
	}
	go b.run(h)
	return b
}

func (b *Broker) run(h *hub) {
	defer close(b.stopped)
	for {
		select {
		case <-b.stopCh:
			if h.flush != nil {
				h.flush.Stop()
			}
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		case now := <-h.flushC():
			h.flush = nil
			h.summarize(now)
		}
	}
}

// do hands op to the loop. It reports false once the broker is closed.
func (b *Broker) do(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a tab and returns its channel. The latest frame of each
// published type is queued on it straight away.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if !b.do(func(h *hub) { h.subscribe(ch) }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a tab and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) { h.unsubscribe(ch) })
}

// ClientCount returns the number of connected tabs.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	return <-resp
}

// Publish broadcasts a value event and remembers it for later subscribers.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) { h.publish(event) })
}

// PublishChange announces a mutation of a persisted collection as
// "<collection>.changed", followed by a throttled dashboard.changed.
func (b *Broker) PublishChange(collection, op, id string) {
	b.do(func(h *hub) { h.change(collection, op, id, time.Now()) })
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
