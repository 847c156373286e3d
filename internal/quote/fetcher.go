// Package quote resolves a quote from a network source and falls back to a
// bundled offline pool on any failure.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/corner/internal/models"
)

// Defaults for the quote source.
const (
	DefaultURL         = "https://api.quotable.io/random"
	DefaultSourceLabel = "Quotable"
	DefaultTimeout     = 5 * time.Second
	OfflineAttribution = "offline set"
)

// DefaultTags restricts the source to general motivation; romantic topics
// are excluded.
var DefaultTags = []string{"motivational", "inspirational", "success", "wisdom", "famous-quotes"}

var offlinePool = []models.Quote{
	{Text: "Discipline is just kindness to your future self.", Attribution: OfflineAttribution},
	{Text: "Focus on what you can control. Let the rest be background noise.", Attribution: OfflineAttribution},
	{Text: "Start before you feel ready.", Attribution: OfflineAttribution},
	{Text: "You don’t need a new plan. You need a clean next step.", Attribution: OfflineAttribution},
	{Text: "Make it simple. Make it repeatable.", Attribution: OfflineAttribution},
	{Text: "Done is better than perfect, and calm is better than rushed.", Attribution: OfflineAttribution},
	{Text: "Your confidence grows every time you keep a promise to yourself.", Attribution: OfflineAttribution},
}

// OfflinePool returns a copy of the bundled fallback quotes.
func OfflinePool() []models.Quote {
	out := make([]models.Quote, len(offlinePool))
	copy(out, offlinePool)
	return out
}

// Fetcher fetches one quote per call. It keeps no state between calls.
type Fetcher struct {
	url     string
	tags    []string
	timeout time.Duration
	label   string
	client  *http.Client
	pick    func(n int) int
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithURL sets the quote source endpoint.
func WithURL(u string) Option {
	return func(f *Fetcher) { f.url = u }
}

// WithTags sets the topic tag filter.
func WithTags(tags []string) Option {
	return func(f *Fetcher) { f.tags = tags }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithSourceLabel sets the label attached to network results.
func WithSourceLabel(label string) Option {
	return func(f *Fetcher) { f.label = label }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithPicker replaces the uniform random index source used for offline picks.
func WithPicker(pick func(n int) int) Option {
	return func(f *Fetcher) { f.pick = pick }
}

// WithLogger sets the logger for fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher with defaults overridden by opts.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		url:     DefaultURL,
		tags:    DefaultTags,
		timeout: DefaultTimeout,
		label:   DefaultSourceLabel,
		client:  &http.Client{},
		pick:    rand.IntN,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.label == "" {
		f.label = DefaultSourceLabel
	}
	return f
}

// payload mirrors the JSON returned by the quote source.
type payload struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

var errEmptyContent = errors.New("quote: empty content")

// Fetch returns a network quote, or an offline one when the request fails
// for any reason. It never returns an error.
func (f *Fetcher) Fetch(ctx context.Context) models.Quote {
	q, err := f.fetchNetwork(ctx)
	if err != nil {
		f.logger.Debug("quote: using offline pool", slog.String("error", err.Error()))
		return f.Offline()
	}
	return q
}

// Offline picks a quote from the offline pool.
func (f *Fetcher) Offline() models.Quote {
	return offlinePool[f.pick(len(offlinePool))]
}

func (f *Fetcher) fetchNetwork(ctx context.Context) (models.Quote, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	u, err := url.Parse(f.url)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote: parse url: %w", err)
	}
	if len(f.tags) > 0 {
		q := u.Query()
		q.Set("tags", strings.Join(f.tags, "|"))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Quote{}, fmt.Errorf("quote: unexpected status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.Quote{}, fmt.Errorf("quote: decoding response: %w", err)
	}
	if strings.TrimSpace(p.Content) == "" {
		return models.Quote{}, errEmptyContent
	}
	author := strings.TrimSpace(p.Author)
	if author == "" {
		author = "Unknown"
	}
	return models.Quote{Text: p.Content, Attribution: author, SourceLabel: f.label}, nil
}

// Meta formats the attribution line: "— author" plus " • source" when the
// quote came from the network.
func Meta(q models.Quote) string {
	if q.SourceLabel == "" {
		return "— " + q.Attribution
	}
	return "— " + q.Attribution + " • " + q.SourceLabel
}

// CopyText is the text copied to the clipboard for q.
func CopyText(q models.Quote) string {
	return strings.TrimSpace(q.Text + " " + Meta(q))
}
