// Package configwatcher reboots the container whenever one of its
// configuration files changes.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultRetryInterval is the delay before watches are set up again after
// a failure, e.g. when a file is being replaced.
const DefaultRetryInterval = time.Second

// DefaultQuietPeriod is how long the watched files must stay unchanged
// before a reload, so that a burst of writes triggers a single reload.
const DefaultQuietPeriod = 100 * time.Millisecond

// Logger is the subset of componentkit.Logger the watcher uses.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ReloadFunc is called once at start and after every change.
type ReloadFunc func(ctx context.Context)

// Watcher watches a set of files.
type Watcher struct {
	watcher       *fsnotify.Watcher
	logger        Logger
	reload        ReloadFunc
	paths         []string
	absPaths      map[string]bool
	retryInterval time.Duration
	quietPeriod   time.Duration
}

// New creates a watcher for paths. Run starts it.
func New(paths []string, logger Logger, reload ReloadFunc) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file watcher: %w", err)
	}
	return &Watcher{
		watcher:       w,
		logger:        logger,
		reload:        reload,
		paths:         paths,
		absPaths:      make(map[string]bool),
		retryInterval: DefaultRetryInterval,
		quietPeriod:   DefaultQuietPeriod,
	}, nil
}

// Watch creates a watcher and runs it in a goroutine until ctx is done.
func Watch(ctx context.Context, paths []string, logger Logger, reload ReloadFunc) error {
	w, err := New(paths, logger, reload)
	if err != nil {
		return err
	}
	go w.Run(ctx)
	return nil
}

// Run blocks until ctx is done. reload runs right after watches are set up,
// so that no change between the initial load and the first watch is missed.
func (w *Watcher) Run(ctx context.Context) {
	retryCh := make(chan struct{}, 1)
	scheduleRetry := func() {
		time.AfterFunc(w.retryInterval, func() {
			select {
			case retryCh <- struct{}{}:
			default:
			}
		})
	}
	for {
		if err := w.setupWatches(); err != nil {
			w.logger.Error("Failed to watch config files", "error", err)
			scheduleRetry()
		}

		w.reload(ctx)

		if quit := w.waitForEvents(ctx, retryCh); quit {
			return
		}
	}
}

func (w *Watcher) setupWatches() error {
	for _, p := range w.paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("unable to resolve %q: %w", p, err)
		}
		dir := filepath.Dir(absPath)
		realDir, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return fmt.Errorf("unable to evaluate symlinks for %q: %w", dir, err)
		}
		realPath := filepath.Join(realDir, filepath.Base(absPath))
		w.absPaths[realPath] = true
		if err := w.watcher.Add(realDir); err != nil {
			return fmt.Errorf("unable to watch %q: %w", realDir, err)
		}
	}
	return nil
}

func (w *Watcher) waitForEvents(ctx context.Context, retryCh <-chan struct{}) bool {
	for {
		select {
		case <-ctx.Done():
			w.close()
			return true
		case event, ok := <-w.watcher.Events:
			if !ok {
				return true
			}
			if !w.absPaths[event.Name] {
				continue
			}
			w.logger.Info("Config file changed", "file", event.Name, "op", event.Op.String())
			return w.settle(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return true
			}
			w.logger.Error("Watcher error", "error", err)
		case <-retryCh:
			drain(retryCh)
			return false
		}
	}
}

// settle returns once the watched files were quiet for the quiet period.
// It reports true when the watcher stopped meanwhile.
func (w *Watcher) settle(ctx context.Context) bool {
	timer := time.NewTimer(w.quietPeriod)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.close()
			return true
		case event, ok := <-w.watcher.Events:
			if !ok {
				return true
			}
			if w.absPaths[event.Name] {
				w.logger.Debug("Config file changed again", "file", event.Name, "op", event.Op.String())
				timer.Reset(w.quietPeriod)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return true
			}
			w.logger.Error("Watcher error", "error", err)
		case <-timer.C:
			return false
		}
	}
}

func (w *Watcher) close() {
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Error closing watcher", "error", err)
	}
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
