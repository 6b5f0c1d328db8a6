// Package watch follows the ledger state file and reports every saved
// version of it.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/epochbits/pkg/log"
	"github.com/bft-labs/epochbits/pkg/state"
)

// Handler receives each reloaded state.
type Handler func(state.State)

// Config holds configuration options for the watcher.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// Watcher reloads a state file through a repository whenever it changes.
type Watcher struct {
	mu sync.Mutex
	wg sync.WaitGroup

	debounceDelay time.Duration
	path          string
	repo          state.Repository
	handler       Handler
	logger        log.Logger
	debounce      *time.Timer
}

// New creates a watcher for the file at path, loaded through repo.
func New(cfg Config, path string, repo state.Repository, handler Handler, logger log.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		debounceDelay: cfg.DebounceDelay,
		path:          path,
		repo:          repo,
		handler:       handler,
		logger:        logger,
	}
}

// Run delivers the current state once, then every change, until ctx is
// canceled. The parent directory is watched because saves replace the
// file by rename. The handler is never called after Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching state file", log.String("path", w.path))
	defer func() {
		w.stopDebounce()
		w.wg.Wait()
	}()

	w.reload(ctx)

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("state watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		defer w.wg.Done()
		w.reload(ctx)
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.debounce = nil
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	st, err := w.repo.Load(ctx)
	if err != nil {
		w.logger.Warn("state reload failed", log.String("path", w.path), log.Err(err))
		return
	}
	if ctx.Err() != nil {
		return
	}
	w.handler(st)
}
