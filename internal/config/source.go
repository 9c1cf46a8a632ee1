package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source holds the current configuration and swaps it atomically on reload.
// Readers take a snapshot with Current and pass it down explicitly.
type Source struct {
	path     string
	current  atomic.Pointer[Config]
	logger   *slog.Logger
	debounce time.Duration
	onReload func(Config)
}

// NewSource loads the configuration at path and returns a Source holding it.
func NewSource(path string, logger *slog.Logger) (*Source, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{path: path, logger: logger, debounce: 250 * time.Millisecond}
	s.current.Store(&cfg)
	return s, nil
}

// StaticSource wraps a fixed configuration. Watch on it only waits for
// cancellation.
func StaticSource(cfg Config) *Source {
	s := &Source{logger: slog.Default()}
	s.current.Store(&cfg)
	return s
}

// Current returns the configuration in effect.
func (s *Source) Current() Config {
	return *s.current.Load()
}

// OnReload registers a callback invoked after each successful reload.
// Must be called before Watch.
func (s *Source) OnReload(fn func(Config)) {
	s.onReload = fn
}

// Reload re-reads the file. On error the previous configuration stays active.
func (s *Source) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(&cfg)
	if s.onReload != nil {
		s.onReload(cfg)
	}
	return nil
}

// Watch reloads the configuration whenever the backing file changes, until
// ctx is cancelled. The parent directory is watched so that editors which
// replace the file on save are handled.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("config reload failed, keeping previous", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("config reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", "error", err)
		}
	}
}
