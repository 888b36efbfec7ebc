package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	onReload func(*Config, error)
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Config
	reloads atomic.Uint32
}

func NewWatcher(path string, initial *Config, onReload func(*Config, error), logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		logger:   logger,
		current:  initial,
	}
}

// Start watches the file's directory so editors that replace the file are
// picked up too. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watching config dir: %w", err)
	}

	go w.watch(ctx, fw)
	return nil
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	count := w.reloads.Add(1)
	w.logger.Info("reloading config file", "path", w.path, "count", count)

	cfg, err := loadFile(w.path)
	if err != nil {
		w.logger.Error("reloading config", "error", err)
		w.onReload(nil, err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.onReload(cfg, nil)
}

// Snapshot returns the most recently loaded config.
func (w *Watcher) Snapshot() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) ReloadCount() uint32 {
	return w.reloads.Load()
}
