// Package watch rebuilds a design document whenever its file changes.
// It backs `forge dev`: edit the document in one terminal, watch the
// build rerun in another.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forgecad/forgecad/pkg/telemetry"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reruns a callback when a watched file changes.
type Watcher struct {
	log      *telemetry.Logger
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long to wait after the last change before
// rebuilding. Editors often produce several events per save.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a Watcher.
func New(tel *telemetry.Telemetry, opts ...Option) *Watcher {
	if tel == nil {
		tel = telemetry.NewNop()
	}
	w := &Watcher{
		log:      tel.Logger.NewComponentLogger("watch"),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once, then blocks rebuilding on every change to path
// until the context is canceled. Build failures are logged, not
// returned; the loop only stops on watcher or context errors.
func (w *Watcher) Run(ctx context.Context, path string, build func(context.Context) error) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on
	// save, which drops a direct file watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.runBuild(ctx, path, build)

	var rebuildTimer *time.Timer
	defer func() {
		if rebuildTimer != nil {
			rebuildTimer.Stop()
		}
	}()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WithField("file", event.Name).Debugf("design file changed (%s)", event.Op)

			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			rebuildTimer = time.AfterFunc(w.debounce, func() {
				w.runBuild(ctx, path, build)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, path string, build func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := build(ctx); err != nil {
		w.log.WithError(err).Errorf("build of %s failed", path)
		return
	}
	w.log.Infof("built %s in %s", path, time.Since(start).Round(time.Millisecond))
}
