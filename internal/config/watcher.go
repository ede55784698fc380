package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgomes/wikisearch/internal/logging"
)

const reloadDelay = 250 * time.Millisecond

var log = logging.ForComponent(logging.CompConfig)

// Watcher reloads the config file when it changes on disk. Editors often
// replace the file rather than write it, so the parent directory is watched
// and events are filtered by name.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	pending  time.Time
	mu       sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
	onChange func(*Config)
}

func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		watcher:  fsw,
		stop:     make(chan struct{}),
		onChange: onChange,
	}, nil
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.Stop()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go w.processEvents(ctx)
	go w.processPending(ctx)

	log.Debug("config_watch_started", slog.String("path", w.path))

	select {
	case <-ctx.Done():
	case <-w.stop:
	}
	w.Stop()
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.watcher.Close() //nolint:errcheck
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config_watch_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processPending(ctx context.Context) {
	ticker := time.NewTicker(reloadDelay / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.reloadIfSettled()
		}
	}
}

func (w *Watcher) reloadIfSettled() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < reloadDelay {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	cfg, err := LoadFrom(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Warn("config_reload_failed", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}

	log.Info("config_reloaded", slog.String("path", w.path))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
