package routetable

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more writes before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// ChangeHandler receives the reloaded table, or the error that prevented the
// reload.
type ChangeHandler func(Table, error)

// WatchOption tunes a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger used for watch errors.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher reloads layered route tables when one of their files changes.
// Directories are watched so that editors replacing files by rename are seen.
type Watcher struct {
	paths    []string
	files    map[string]struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	onChange ChangeHandler
}

// NewWatcher starts watching the directories holding paths. Call Run to
// process events.
func NewWatcher(onChange ChangeHandler, paths []string, opts ...WatchOption) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("routetable: change handler is required")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("routetable: at least one path is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("routetable: create watcher: %w", err)
	}
	w := &Watcher{
		paths:    append([]string(nil), paths...),
		files:    make(map[string]struct{}, len(paths)),
		watcher:  fsw,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		onChange: onChange,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	dirs := map[string]struct{}{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("routetable: resolve %q: %w", path, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("routetable: watch %q: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes file events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("route table watch error", "error", err)
		case <-timer.C:
			table, err := LoadLayered(w.paths...)
			if err != nil {
				w.logger.Warn("route table reload failed", "error", err)
			}
			w.onChange(table, err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
