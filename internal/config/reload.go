package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher serves a local watch config and keeps it fresh with fsnotify.
//
// The initial load must succeed; after that, edits to the file are
// picked up in the background. A broken edit never replaces the last
// good config: it is logged and the previous value stays in effect, so
// Load always returns a valid config.
type Watcher struct {
	path   string
	logger *slog.Logger

	fs   *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	current *WatchConfig
}

// NewWatcher loads the config at path and starts watching its directory
// for changes. Watching the directory rather than the file survives the
// rename-and-replace writes editors and config management tools do.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	initial, err := LoadWatchFile(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		fs:      fs,
		done:    make(chan struct{}),
		current: initial,
	}
	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadWatchFile(w.path)
	if err != nil {
		w.logger.Warn("watch config changed but did not validate; keeping previous", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	changed := !w.current.Equal(cfg)
	w.current = cfg
	w.mu.Unlock()

	if changed {
		w.logger.Info("watch config reloaded", "path", w.path, "engines", cfg.Engines())
	}
}

// Load implements Provider. It returns the last good config and never
// fails after construction.
func (w *Watcher) Load(ctx context.Context) (*WatchConfig, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
