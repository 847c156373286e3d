package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/corner/internal/dashboard"
	"github.com/starford/corner/internal/playlist"
	"github.com/starford/corner/internal/storage"
	"github.com/starford/corner/internal/testutil"
)

// testEnv wires a dashboard over an in-memory store. An empty authToken
// means disabled mode.
func testEnv(t *testing.T, authToken string) (*testutil.Fixture, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*testutil.Fixture, http.Handler) {
	t.Helper()

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Stay hungry.","author":"Steve Jobs"}`))
	}))
	t.Cleanup(quoteSrv.Close)

	now := time.Date(2025, time.November, 8, 12, 0, 0, 0, testutil.India(t))
	f := testutil.NewFixture(t, storage.NewMemory(), now, quoteSrv.URL)
	return f, NewRouter(f.Service, authEnabled, authToken, sseHandler)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestClockEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/clock", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clock = %d", w.Code)
	}
	v := decode[dashboard.ClockView](t, w)
	if v.Label != "IST • 12:00" {
		t.Errorf("label = %q", v.Label)
	}
}

func TestCountdownEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/countdown", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("countdown = %d", w.Code)
	}
	v := decode[map[string]any](t, w)
	if v["days"] != "1" || v["hours"] != "12" {
		t.Errorf("snapshot = %v", v)
	}
}

func TestAddAndListCountdowns(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/countdowns", AddCountdownRequest{Name: "Trip", Date: "2025-11-10"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d, body = %s", w.Code, w.Body.String())
	}
	added := decode[CountdownResponse](t, w)
	if added.Notice != "Countdown added" {
		t.Errorf("notice = %q", added.Notice)
	}
	if added.Countdown.ID == "" || added.Countdown.Name != "Trip" {
		t.Errorf("countdown = %+v", added.Countdown)
	}

	w = do(t, router, http.MethodGet, "/countdowns", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	list := decode[map[string]any](t, w)
	rows := list["countdowns"].([]any)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if got := rows[0].(map[string]any)["remaining"]; got != "1d 12h 00m" {
		t.Errorf("remaining = %v", got)
	}
}

func TestAddCountdown_Validation(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name string
		body AddCountdownRequest
		want string
	}{
		{"missing name", AddCountdownRequest{Name: "  ", Date: "2025-11-10"}, "Please enter an event name"},
		{"missing date", AddCountdownRequest{Name: "Trip"}, "Please pick a date"},
		{"bad date", AddCountdownRequest{Name: "Trip", Date: "10/11/2025"}, "Please pick a date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/countdowns", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decode[errResponse](t, w).Error; got != tt.want {
				t.Errorf("notice = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddCountdown_InvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/countdowns", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", w.Code)
	}
}

func TestDeleteAndClearCountdowns(t *testing.T) {
	f, router := testEnv(t, "")

	for _, name := range []string{"a", "b"} {
		w := do(t, router, http.MethodPost, "/countdowns", AddCountdownRequest{Name: name, Date: "2025-12-01"})
		if w.Code != http.StatusCreated {
			t.Fatalf("add %s = %d", name, w.Code)
		}
	}
	rows := f.Service.Countdowns(f.Clock.Now())

	w := do(t, router, http.MethodDelete, "/countdowns/"+rows[0].ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if got := decode[NoticeResponse](t, w).Notice; got != "Countdown deleted" {
		t.Errorf("notice = %q", got)
	}
	if n := len(f.Service.Countdowns(f.Clock.Now())); n != 1 {
		t.Errorf("after delete = %d rows, want 1", n)
	}

	// Unknown id is not an error.
	w = do(t, router, http.MethodDelete, "/countdowns/nope", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete unknown = %d, want 200", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/countdowns", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear = %d", w.Code)
	}
	if got := decode[NoticeResponse](t, w).Notice; got != "Saved countdowns cleared" {
		t.Errorf("notice = %q", got)
	}
	if n := len(f.Service.Countdowns(f.Clock.Now())); n != 0 {
		t.Errorf("after clear = %d rows, want 0", n)
	}
}

func TestNotesFlow(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", AddNoteRequest{Text: "Dinner at 8?", Reply: "Yes!"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d, body = %s", w.Code, w.Body.String())
	}
	added := decode[NoteResponse](t, w)
	if added.Note.Author != "kunjus" {
		t.Errorf("author = %q, want session default kunjus", added.Note.Author)
	}

	w = do(t, router, http.MethodPut, "/notes/author", AuthorRequest{Author: "me"})
	if w.Code != http.StatusOK {
		t.Fatalf("set author = %d", w.Code)
	}
	if got := decode[AuthorResponse](t, w); got.Author != "me" || got.Label != "Me" {
		t.Errorf("author = %+v", got)
	}

	w = do(t, router, http.MethodPost, "/notes", AddNoteRequest{Text: "<b>hi</b>"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add second = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/notes", nil)
	view := decode[dashboard.NotesView](t, w)
	if view.Count != 2 {
		t.Fatalf("count = %d, want 2", view.Count)
	}
	if view.Entries[0].Author != "me" || view.Entries[0].Panels[0].Title != "Me" {
		t.Errorf("newest entry = %+v", view.Entries[0])
	}
	if view.Entries[1].Panels[1].Text != "Yes!" {
		t.Errorf("reply panel = %+v", view.Entries[1].Panels[1])
	}

	w = do(t, router, http.MethodDelete, "/notes/"+added.Note.ID, nil)
	if got := decode[NoticeResponse](t, w).Notice; got != "Note deleted" {
		t.Errorf("delete notice = %q", got)
	}

	w = do(t, router, http.MethodDelete, "/notes", nil)
	if got := decode[NoticeResponse](t, w).Notice; got != "All notes cleared" {
		t.Errorf("clear notice = %q", got)
	}
	w = do(t, router, http.MethodGet, "/notes", nil)
	if decode[dashboard.NotesView](t, w).Count != 0 {
		t.Error("notes not cleared")
	}
}

func TestAddNote_Validation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", AddNoteRequest{Text: "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty text = %d, want 400", w.Code)
	}
	if got := decode[errResponse](t, w).Error; got != "Write something first" {
		t.Errorf("notice = %q", got)
	}

	w = do(t, router, http.MethodPut, "/notes/author", AuthorRequest{Author: "stranger"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown author = %d, want 400", w.Code)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	f, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/quote", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("quote = %d", w.Code)
	}
	q := decode[dashboard.QuoteView](t, w)
	if q.Text != "Stay hungry." || q.Meta != "— Steve Jobs • Quotable" {
		t.Errorf("quote = %+v", q)
	}
	if types := f.Events.Types(); len(types) != 1 || types[0] != "quote.updated" {
		t.Errorf("events = %v", types)
	}
}

func TestPromptEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/prompt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("prompt = %d", w.Code)
	}
	p := decode[map[string]string](t, w)
	if p["text"] == "" || p["mission"] == "" {
		t.Errorf("prompt = %v", p)
	}
}

func TestPlaylistFlow(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/playlist", nil)
	if got := decode[dashboard.PlaylistView](t, w).ID; got != playlist.DefaultID {
		t.Errorf("default = %q", got)
	}

	w = do(t, router, http.MethodPut, "/playlist", PlaylistRequest{Input: "https://youtube.com/playlist?list=PLxyz1234567890"})
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d", w.Code)
	}
	saved := decode[PlaylistResponse](t, w)
	if saved.ID != "PLxyz1234567890" || saved.Notice != "Playlist saved" {
		t.Errorf("saved = %+v", saved)
	}
	if !strings.Contains(saved.EmbedURL, "list=PLxyz1234567890") {
		t.Errorf("embed = %q", saved.EmbedURL)
	}

	w = do(t, router, http.MethodPut, "/playlist", PlaylistRequest{Input: ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty input = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/playlist", nil)
	reset := decode[PlaylistResponse](t, w)
	if reset.ID != playlist.DefaultID || reset.Notice != "Playlist reset" {
		t.Errorf("reset = %+v", reset)
	}
}

func TestListCountdowns_SharedStore(t *testing.T) {
	store := testutil.TestSQLite(t)
	now := time.Date(2025, time.November, 8, 12, 0, 0, 0, testutil.India(t))
	server := testutil.NewFixture(t, store, now, "http://127.0.0.1:0")
	other := testutil.NewFixture(t, store, now, "http://127.0.0.1:0")
	router := NewRouter(server.Service, false, "", nil)

	if _, err := other.Service.AddCountdown(context.Background(), "Trip", "2025-11-10"); err != nil {
		t.Fatal(err)
	}

	list := decode[CountdownListResponse](t, do(t, router, http.MethodGet, "/countdowns", nil))
	if list.Count != 1 || list.Countdowns[0].Name != "Trip" {
		t.Errorf("list = %+v", list)
	}

	w := httptest.NewRecorder()
	NewPageHandler(server.Service).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(w.Body.String(), "Trip") {
		t.Error("page does not show a countdown written by another process")
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_QueryTokenSetsCookie(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes?token=secret123", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("query token = %d, want 200", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != TokenCookie || cookies[0].Value != "secret123" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/countdowns", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("cookie auth = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_WrongQueryOrCookie(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes?token=wrong", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong query token = %d, want 401", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("wrong query token should not set a cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "wrong"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong cookie = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", blockingSSE)

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvFull(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestPageRendersEscaped(t *testing.T) {
	f, _ := testEnv(t, "")

	if _, err := f.Service.AddNote(context.Background(), "", `<script>alert("x")</script>`, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Service.AddCountdown(context.Background(), "Trip & Tour", "2025-11-10"); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	NewPageHandler(f.Service).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("page = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, `<script>alert("x")</script>`) {
		t.Error("note text rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("escaped note text missing")
	}
	for _, want := range []string{"IST • 12:00", "Trip &amp; Tour", "1d 12h 00m", "youtube-nocookie.com/embed/videoseries"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
