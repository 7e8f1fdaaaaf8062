// Package watch turns filesystem events under a repository into debounced
// modification batches.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Batching defaults. A batch is delivered once no event arrived for
// DefaultDebounce, and never later than DefaultMaxWait after its first event.
const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultMaxWait  = 5 * time.Second
)

// Notifier receives one batch of changed paths per debounce window.
type Notifier interface {
	Notify(ctx context.Context, paths []string)
}

// Filter decides which paths never count as modifications.
type Filter interface {
	ShouldIgnore(path string, isDir bool) bool
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher recursively watches a directory tree.
type Watcher struct {
	root     string
	notifier Notifier
	filter   Filter
	debounce time.Duration
	maxWait  time.Duration
	logger   *slog.Logger
	ready    func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter skips paths the filter ignores. The .git directory is always skipped.
func WithFilter(f Filter) Option {
	return func(w *Watcher) { w.filter = f }
}

// WithDebounce sets the batching window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMaxWait caps how long a batch may be postponed by a steady stream of
// events.
func WithMaxWait(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.maxWait = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher over root that reports to notifier.
func New(root string, notifier Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		notifier: notifier,
		debounce: DefaultDebounce,
		maxWait:  DefaultMaxWait,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Pending events are dropped on return.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("watching for changes", slog.String("root", w.root), slog.Duration("debounce", w.debounce))
	if w.ready != nil {
		w.ready()
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := map[string]struct{}{}
	var first time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.accept(fw, ev) {
				continue
			}
			if len(pending) == 0 {
				first = time.Now()
			}
			pending[w.relative(ev.Name)] = struct{}{}
			timer.Reset(w.nextFlush(first))

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.Any("error", err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			slices.Sort(batch)
			clear(pending)
			w.notifier.Notify(ctx, batch)
		}
	}
}

// nextFlush returns the debounce delay, shortened so the batch started at
// first is delivered within maxWait.
func (w *Watcher) nextFlush(first time.Time) time.Duration {
	remaining := w.maxWait - time.Since(first)
	return max(min(w.debounce, remaining), 0)
}

func (w *Watcher) accept(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op&relevantOps == 0 {
		return false
	}

	isDir := false
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			isDir = true
		}
	}
	if w.ignored(ev.Name, isDir) {
		return false
	}

	if isDir {
		if err := w.addTree(fw, ev.Name); err != nil {
			w.logger.Warn("watch new directory", slog.String("path", ev.Name), slog.Any("error", err))
		}
	}
	return true
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	rel := w.relative(path)
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}
	return w.filter != nil && w.filter.ShouldIgnore(path, isDir)
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
