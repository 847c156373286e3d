package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change kinds reported by Watch.
const (
	ChangeUpdated = "changed"
	ChangeDeleted = "deleted"
)

// ChangeCallback is called after a key's file changed outside this process's
// own writes.
type ChangeCallback func(kind, key string)

// watchDebounce coalesces the burst of events a single rename produces.
const watchDebounce = 100 * time.Millisecond

// Watch observes the FS store directory until ctx is cancelled and calls cb
// for every key whose file was changed or removed by someone else. Changes
// whose content matches the driver's own last write are ignored.
func Watch(ctx context.Context, store *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", store.Root()))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(key string) {
		pending[key] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	flush := func() {
		for key := range pending {
			delete(pending, key)
			kind := ChangeUpdated
			data, err := store.Get(key)
			if errors.Is(err, ErrNotExist) {
				kind = ChangeDeleted
				data = nil
			} else if err != nil {
				logger.Warn("watcher: read failed", slog.String("key", key), slog.String("error", err.Error()))
				continue
			}
			if store.ownWrite(key, data) {
				continue
			}
			logger.Debug("watcher: external change", slog.String("key", key), slog.String("op", kind))
			if cb != nil {
				cb(kind, key)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := store.keyOf(ev.Name)
			if !ok {
				continue
			}
			schedule(key)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// WatchIfFS runs Watch when store is an *FS and otherwise blocks until ctx
// is done, so callers can start it unconditionally.
func WatchIfFS(ctx context.Context, store Provider, logger *slog.Logger, cb ChangeCallback) error {
	fs, ok := store.(*FS)
	if !ok {
		<-ctx.Done()
		return nil
	}
	if _, err := os.Stat(fs.Root()); err != nil {
		return err
	}
	return Watch(ctx, fs, logger, cb)
}
