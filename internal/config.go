package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/corner/internal/civiltime"
	"github.com/starford/corner/internal/countdown"
	"github.com/starford/corner/internal/models"
	"github.com/starford/corner/internal/playlist"
	"github.com/starford/corner/internal/quote"
	"github.com/starford/corner/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Auth     AuthConfig        `yaml:"auth"`
	Storage  StorageConfig     `yaml:"storage"`
	Clock    ClockConfig       `yaml:"clock"`
	Ticks    TicksConfig       `yaml:"ticks"`
	Quote    QuoteConfig       `yaml:"quote"`
	Notes    NotesConfig       `yaml:"notes"`
	Playlist PlaylistConfig    `yaml:"playlist"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Clock.Validate(); err != nil {
		return err
	}
	if err := c.Ticks.Validate(); err != nil {
		return err
	}
	if err := c.Quote.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	return c.Playlist.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// StorageConfig selects and locates the durable key-value store.
type StorageConfig struct {
	Driver     string     `yaml:"driver"`
	Path       string     `yaml:"path"`
	SQLitePath string     `yaml:"sqlite_path"`
	Watch      bool       `yaml:"watch"`
	Keys       KeysConfig `yaml:"keys"`
}

// Location returns the path handed to the selected driver.
func (c *StorageConfig) Location() string {
	if c.Driver == storage.DriverSQLite {
		return c.SQLitePath
	}
	return c.Path
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(storage.DriverFS, storage.DriverSQLite, storage.DriverMemory)),
		validation.Field(&c.Path, validation.When(c.Driver == storage.DriverFS, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == storage.DriverSQLite, validation.Required)),
	); err != nil {
		return err
	}
	return c.Keys.Validate()
}

// KeysConfig names the store key of each persisted collection.
type KeysConfig struct {
	Countdowns string `yaml:"countdowns"`
	Notes      string `yaml:"notes"`
	Playlist   string `yaml:"playlist"`
}

// Validate validates the store keys.
func (c *KeysConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Countdowns, validation.Required, validation.NotIn(c.Notes, c.Playlist)),
		validation.Field(&c.Notes, validation.Required, validation.NotIn(c.Playlist)),
		validation.Field(&c.Playlist, validation.Required),
	)
}

// ClockConfig holds the civil timezone and the yearly anchor.
type ClockConfig struct {
	Timezone    string `yaml:"timezone"`
	Anchor      string `yaml:"anchor"`
	AnchorLabel string `yaml:"anchor_label"`
}

// Validate validates the clock configuration.
func (c *ClockConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			_, err := civiltime.LoadLocation(c.Timezone)
			return err
		})),
		validation.Field(&c.Anchor, validation.Required, validation.By(func(any) error {
			_, err := countdown.ParseAnchor(c.Anchor)
			return err
		})),
	)
}

// TicksConfig holds the live recomputation intervals.
type TicksConfig struct {
	Clock      time.Duration `yaml:"clock"`
	Countdown  time.Duration `yaml:"countdown"`
	Countdowns time.Duration `yaml:"countdowns"`
}

// Validate validates the tick intervals.
func (c *TicksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Clock, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Countdown, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Countdowns, validation.Required, validation.Min(time.Millisecond)),
	)
}

// QuoteConfig holds the quote source.
type QuoteConfig struct {
	URL         string        `yaml:"url"`
	Tags        []string      `yaml:"tags"`
	Timeout     time.Duration `yaml:"timeout"`
	SourceLabel string        `yaml:"source_label"`
}

// Validate validates the quote configuration.
func (c *QuoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// NotesConfig holds the note log parties.
type NotesConfig struct {
	DefaultAuthor models.Author `yaml:"default_author"`
	PartnerLabel  string        `yaml:"partner_label"`
	SelfLabel     string        `yaml:"self_label"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultAuthor, validation.In(models.AuthorPartner, models.AuthorSelf)),
	)
}

// PlaylistConfig holds the default playlist.
type PlaylistConfig struct {
	DefaultID string `yaml:"default_id"`
}

// Validate validates the playlist configuration.
func (c *PlaylistConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultID, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Storage: StorageConfig{
			Driver:     storage.DriverFS,
			Path:       "./data",
			SQLitePath: "./corner.db",
			Watch:      true,
			Keys: KeysConfig{
				Countdowns: "kunjus_countdowns_v1",
				Notes:      "kunjus_notes_v1",
				Playlist:   "kunjus_playlist_v1",
			},
		},
		Clock: ClockConfig{
			Timezone:    civiltime.DefaultZone,
			Anchor:      "11-10",
			AnchorLabel: "Birthday",
		},
		Ticks: TicksConfig{
			Clock:      15 * time.Second,
			Countdown:  time.Second,
			Countdowns: 30 * time.Second,
		},
		Quote: QuoteConfig{
			URL:         quote.DefaultURL,
			Tags:        quote.DefaultTags,
			Timeout:     quote.DefaultTimeout,
			SourceLabel: quote.DefaultSourceLabel,
		},
		Notes: NotesConfig{
			DefaultAuthor: models.AuthorPartner,
			PartnerLabel:  "Kunjus",
			SelfLabel:     "Me",
		},
		Playlist: PlaylistConfig{
			DefaultID: playlist.DefaultID,
		},
	}
}
