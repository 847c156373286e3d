package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Collection is an ordered sequence of T serialized as one JSON array under
// a single key. Reads fail soft: a missing or unparseable value is an empty
// collection.
type Collection[T any] struct {
	store  Provider
	key    string
	logger *slog.Logger
}

// NewCollection binds a collection to key. A nil logger uses slog.Default().
func NewCollection[T any](store Provider, key string, logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{store: store, key: key, logger: logger}
}

// Key returns the store key.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored sequence. It never fails.
func (c *Collection[T]) Load() []T {
	data, err := c.store.Get(c.key)
	if err != nil {
		if !errors.Is(err, ErrNotExist) {
			c.logger.Warn("storage: load failed", slog.String("key", c.key), slog.String("error", err.Error()))
		}
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("storage: discarding unparseable value", slog.String("key", c.key), slog.String("error", err.Error()))
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Save replaces the stored sequence with items.
func (c *Collection[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", c.key, err)
	}
	return c.store.Set(c.key, data)
}

// Clear removes the key entirely.
func (c *Collection[T]) Clear() error {
	return c.store.Delete(c.key)
}

// Scalar is a single string value under one key with a default.
type Scalar struct {
	store Provider
	key   string
	def   string
}

// NewScalar binds a scalar to key.
func NewScalar(store Provider, key, def string) *Scalar {
	return &Scalar{store: store, key: key, def: def}
}

// Load returns the stored value, or the default when absent or empty.
func (s *Scalar) Load() string {
	data, err := s.store.Get(s.key)
	if err != nil || len(data) == 0 {
		return s.def
	}
	return string(data)
}

// Save stores v.
func (s *Scalar) Save(v string) error {
	return s.store.Set(s.key, []byte(v))
}

// Default returns the default value.
func (s *Scalar) Default() string {
	return s.def
}
