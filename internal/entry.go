// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/corner/internal/api"
	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/clipboard"
	"github.com/starford/corner/internal/countdown"
	"github.com/starford/corner/internal/countdowns"
	"github.com/starford/corner/internal/dashboard"
	"github.com/starford/corner/internal/livesync"
	"github.com/starford/corner/internal/mcpserver"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/notes"
	"github.com/starford/corner/internal/playlist"
	"github.com/starford/corner/internal/quote"
	"github.com/starford/corner/internal/sse"
	"github.com/starford/corner/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger writing to w as the default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func newQuoteFetcher(cfg *Config, logger *slog.Logger) *quote.Fetcher {
	return quote.New(
		quote.WithURL(cfg.Quote.URL),
		quote.WithTags(cfg.Quote.Tags),
		quote.WithTimeout(cfg.Quote.Timeout),
		quote.WithSourceLabel(cfg.Quote.SourceLabel),
		quote.WithLogger(logger),
	)
}

// openStore opens the configured driver, creating the fs directory if needed.
func openStore(cfg *Config) (storage.Provider, error) {
	if cfg.Storage.Driver == storage.DriverFS {
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Location())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// newService wires the dashboard components over store.
func newService(cfg *Config, store storage.Provider, logger *slog.Logger, events dashboard.Publisher) (*dashboard.Service, error) {
	loc, err := civiltime.LoadLocation(cfg.Clock.Timezone)
	if err != nil {
		return nil, err
	}
	anchor, err := countdown.ParseAnchor(cfg.Clock.Anchor)
	if err != nil {
		return nil, err
	}
	src := civiltime.New(loc, nil)
	keys := cfg.Storage.Keys

	set := countdowns.New(storage.NewCollection[models.Countdown](store, keys.Countdowns, logger), src, nil)
	set.Render()

	log := notes.New(
		storage.NewCollection[models.Note](store, keys.Notes, logger),
		src,
		nil,
		notes.Labels{Partner: cfg.Notes.PartnerLabel, Self: cfg.Notes.SelfLabel},
	)

	return dashboard.NewService(dashboard.Components{
		Clock:      src,
		Tracker:    countdown.NewTracker(anchor, cfg.Clock.AnchorLabel),
		Countdowns: set,
		Notes:      log,
		Session:    notes.NewSession(cfg.Notes.DefaultAuthor),
		Quotes:     newQuoteFetcher(cfg, logger),
		Playlist:   playlist.NewStore(storage.NewScalar(store, keys.Playlist, cfg.Playlist.DefaultID)),
		Events:     events,
	}), nil
}

// Run starts the dashboard server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_location", cfg.Storage.Location()),
		slog.String("timezone", cfg.Clock.Timezone),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, err := newService(cfg, store, logger, broker)
	if err != nil {
		return fmt.Errorf("init dashboard: %w", err)
	}

	scheduler := livesync.New(logger, nil,
		livesync.Job{Name: "clock", Interval: cfg.Ticks.Clock, Run: svc.TickClock},
		livesync.Job{Name: "countdown", Interval: cfg.Ticks.Countdown, Run: svc.TickCountdown},
		livesync.Job{Name: "countdowns", Interval: cfg.Ticks.Countdowns, Run: svc.TickCountdowns},
	)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Dashboard page.
	r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).
		Get("/", api.NewPageHandler(svc).ServeHTTP)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Live recomputation loops.
	g.Go(func() error {
		return scheduler.Run(gCtx)
	})

	// Watch the fs store for edits made outside this process.
	if cfg.Storage.Watch {
		g.Go(func() error {
			err := storage.WatchIfFS(gCtx, store, logger, func(kind, key string) {
				logger.Debug("store changed", slog.String("kind", kind), slog.String("key", key))
				switch key {
				case cfg.Storage.Keys.Countdowns:
					svc.ReloadCountdowns()
				case cfg.Storage.Keys.Notes:
					svc.ReloadNotes()
				case cfg.Storage.Keys.Playlist:
					svc.ReloadPlaylist()
				}
			})
			if err != nil {
				logger.Warn("store watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Ends the SSE streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been shut down, which
// stops the loops and the watcher.
var errShutdown = errors.New("shutdown")

// RunMCP serves the dashboard as MCP tools on stdin/stdout. Logs go to
// stderr so they never interleave with the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := newService(cfg, store, logger, nil)
	if err != nil {
		return fmt.Errorf("init dashboard: %w", err)
	}

	logger.Info("MCP server starting", slog.String("storage_driver", cfg.Storage.Driver))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// PrintQuote fetches one quote, writes it to the configured output and,
// when enabled, copies it to the clipboard.
func PrintQuote(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)

	q := newQuoteFetcher(app.config, logger).Fetch(ctx)
	if _, err := fmt.Fprintf(app.out, "%s\n%s\n", q.Text, quote.Meta(q)); err != nil {
		return fmt.Errorf("write quote: %w", err)
	}

	if app.copy {
		// The notice is the same whichever clipboard path took the text.
		clipboard.New(app.out).Copy(ctx, quote.CopyText(q))
		_, _ = fmt.Fprintln(app.out, dashboard.NoticeCopied)
	}
	return nil
}
