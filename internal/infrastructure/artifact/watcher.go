package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from a single artifact publish.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Store when files in a local artifact directory change.
type Watcher struct {
	store    *Store
	fsw      *fsnotify.Watcher
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher watches dir on behalf of store.
func NewWatcher(store *Store, dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("artifact: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("artifact: watch %s: %w", dir, err)
	}
	return &Watcher{
		store:    store,
		fsw:      fsw,
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start runs the event loop in a goroutine until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("watching artifacts", "dir", w.dir)
	go w.run(ctx)
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing artifact watcher", "error", err)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if relevant(ev) {
				w.logger.Debug("artifact change", "file", ev.Name, "op", ev.Op.String())
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("artifact watcher error", "error", err)
		case <-timer.C:
			_ = w.store.Reload(ctx)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	switch filepath.Ext(ev.Name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
