// Package watch reports changes to the document files of a project
// directory, debounced so an editor's save burst yields one notification.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a directory for writes to a fixed set of file names.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	names     []string
	debounce  time.Duration
	onChange  chan struct{}
	errs      chan error
}

// Config holds watcher options.
type Config struct {
	Dir      string
	Names    []string
	Debounce time.Duration
}

// New creates a watcher for cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", cfg.Dir, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		names:     slices.Clone(cfg.Names),
		debounce:  cfg.Debounce,
		onChange:  make(chan struct{}, 1),
		errs:      make(chan error, 1),
	}, nil
}

// Changes delivers one value per debounced burst of relevant events.
func (w *Watcher) Changes() <-chan struct{} { return w.onChange }

// Errors delivers watcher errors; a full channel drops them.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.isRelevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			select {
			case w.onChange <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return slices.Contains(w.names, filepath.Base(event.Name))
}
