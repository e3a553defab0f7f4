// Package watch re-renders inputs when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/textgrid/pkg/logging"
)

// ChangeType describes the kind of file change observed.
type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

const defaultMaxHistory = 100

// Change records one debounced change to a watched file.
type Change struct {
	Path string
	Type ChangeType
	Time time.Time
}

// Handler receives the changes of one debounce window that match its
// pattern, sorted by path.
type Handler func(changes []Change)

type subscription struct {
	id      string
	pattern string
	handler Handler
}

// Watcher collects file system events for a set of files and directories
// and delivers them in batches once they stop arriving for the debounce
// interval.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu            sync.RWMutex
	targets       map[string]bool // files added directly
	dirs          map[string]bool // directories added directly
	subscriptions map[string]*subscription
	recent        []Change
	maxHistory    int
}

// New creates a watcher. logger may be nil.
func New(debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		fs:            fs,
		debounce:      debounce,
		logger:        logger,
		targets:       make(map[string]bool),
		dirs:          make(map[string]bool),
		subscriptions: make(map[string]*subscription),
		maxHistory:    defaultMaxHistory,
	}, nil
}

// Add watches a file or a directory. Files are watched through their
// parent directory so that editors replacing the file are still seen.
func (w *Watcher) Add(p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", p, err)
	}
	isDir := info.IsDir()
	dir := abs
	if !isDir {
		dir = filepath.Dir(abs)
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.mu.Lock()
	if isDir {
		w.dirs[abs] = true
	} else {
		w.targets[abs] = true
	}
	w.mu.Unlock()

	w.logger.Debug(logging.CategoryWatch, "watch_added", "watching "+abs, map[string]any{"dir": isDir})
	return nil
}

// Subscribe registers a handler for changes whose path matches pattern
// ("" or "*" match everything). It returns the subscription id.
func (w *Watcher) Subscribe(pattern string, handler Handler) string {
	if w == nil || handler == nil {
		return ""
	}
	id := ulid.Make().String()
	w.mu.Lock()
	w.subscriptions[id] = &subscription{id: id, pattern: strings.TrimSpace(pattern), handler: handler}
	w.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription.
func (w *Watcher) Unsubscribe(id string) {
	if w == nil || strings.TrimSpace(id) == "" {
		return
	}
	w.mu.Lock()
	delete(w.subscriptions, id)
	w.mu.Unlock()
}

// Run delivers batches until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]Change)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		fire = nil
		if len(pending) == 0 {
			return
		}
		batch := make([]Change, 0, len(pending))
		for _, c := range pending {
			batch = append(batch, c)
		}
		clear(pending)
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		w.Notify(batch...)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			change, ok := w.convert(event)
			if !ok {
				continue
			}
			pending[change.Path] = change
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			flush()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(logging.CategoryWatch, "watch_error", err, nil)
		}
	}
}

// convert maps an fsnotify event to a change when it concerns a watched
// file.
func (w *Watcher) convert(event fsnotify.Event) (Change, bool) {
	name := filepath.Clean(event.Name)
	w.mu.RLock()
	watched := w.targets[name] || w.dirs[filepath.Dir(name)]
	w.mu.RUnlock()
	if !watched {
		return Change{}, false
	}

	var t ChangeType
	switch {
	case event.Has(fsnotify.Create):
		t = ChangeCreated
	case event.Has(fsnotify.Write):
		t = ChangeModified
	case event.Has(fsnotify.Remove):
		t = ChangeDeleted
	case event.Has(fsnotify.Rename):
		t = ChangeRenamed
	default:
		return Change{}, false
	}
	return Change{Path: name, Type: t, Time: time.Now()}, true
}

// Notify records changes and hands each subscriber the ones matching its
// pattern.
func (w *Watcher) Notify(changes ...Change) {
	if w == nil || len(changes) == 0 {
		return
	}
	w.mu.Lock()
	w.recent = append(w.recent, changes...)
	if len(w.recent) > w.maxHistory {
		w.recent = w.recent[len(w.recent)-w.maxHistory:]
	}
	subs := make([]*subscription, 0, len(w.subscriptions))
	for _, sub := range w.subscriptions {
		subs = append(subs, sub)
	}
	w.mu.Unlock()

	w.logger.Info(logging.CategoryWatch, "changes", fmt.Sprintf("%d file(s) changed", len(changes)), nil)

	for _, sub := range subs {
		var matched []Change
		for _, c := range changes {
			if matchesPattern(sub.pattern, c.Path) {
				matched = append(matched, c)
			}
		}
		if len(matched) > 0 {
			sub.handler(matched)
		}
	}
}

// RecentChanges returns the most recent changes (newest first).
func (w *Watcher) RecentChanges(limit int) []Change {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if limit <= 0 || limit > len(w.recent) {
		limit = len(w.recent)
	}
	out := make([]Change, 0, limit)
	for i := len(w.recent) - 1; i >= len(w.recent)-limit; i-- {
		out = append(out, w.recent[i])
	}
	return out
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func matchesPattern(pattern, filePath string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || pattern == "*" {
		return true
	}
	cleanPath := filepath.ToSlash(strings.TrimSpace(filePath))
	cleanPattern := filepath.ToSlash(pattern)
	if ok, _ := path.Match(cleanPattern, cleanPath); ok {
		return true
	}
	if !strings.Contains(cleanPattern, "/") {
		if ok, _ := path.Match(cleanPattern, path.Base(cleanPath)); ok {
			return true
		}
	}
	return false
}
