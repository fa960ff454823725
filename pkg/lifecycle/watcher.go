package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PolicyWatcher watches a retention policy file and triggers reloads on
// change. Changes are debounced to prevent reload storms while the file is
// being written.
type PolicyWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPolicyWatcher creates a watcher for the given policy file.
func NewPolicyWatcher(path string, debounceInterval time.Duration) (*PolicyWatcher, error) {
	if debounceInterval <= 0 {
		debounceInterval = 100 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &PolicyWatcher{
		watcher:  watcher,
		logger:   slog.Default().With("component", "lifecycle.watcher"),
		path:     filepath.Clean(path),
		debounce: newDebouncer(debounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. onReload is invoked after each debounced change.
func (pw *PolicyWatcher) Watch(ctx context.Context, onReload func() error) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	pw.running = true
	pw.mu.Unlock()

	defer func() {
		pw.mu.Lock()
		pw.running = false
		pw.mu.Unlock()
		close(pw.doneCh)
	}()

	// Watch the containing directory: editors replace files by rename,
	// which would orphan a watch on the file itself.
	if err := pw.watcher.Add(filepath.Dir(pw.path)); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	pw.logger.Info("Policy watcher started",
		"path", pw.path,
		"debounce_ms", pw.debounce.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("Policy watcher stopped (context cancelled)")
			return nil

		case <-pw.stopCh:
			pw.logger.Info("Policy watcher stopped")
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !pw.shouldProcessEvent(event) {
				continue
			}

			pw.logger.Debug("Policy file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			pw.debounce.trigger(func() {
				pw.logger.Info("Reloading retention policy", "path", pw.path)
				if err := onReload(); err != nil {
					pw.logger.Error("Policy reload failed", "error", err)
				}
			})

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			pw.logger.Error("Policy watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (pw *PolicyWatcher) Stop() error {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh

	pw.debounce.stop()

	if err := pw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (pw *PolicyWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == pw.path
}

// debouncer collects rapid events and fires the callback only after a
// quiet period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
