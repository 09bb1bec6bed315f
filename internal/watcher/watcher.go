// Package watcher observes the local git repository for newly created tags
// so a run can trigger without a hosting-platform webhook.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce folds the ref writes git performs while creating a tag
// into a single event.
const DefaultDebounce = 250 * time.Millisecond

// TagEvent is a tag newly created in the watched repository.
type TagEvent struct {
	// Tag is the tag name, including any "dir/" prefix for nested refs.
	Tag string
	// Path is the ref file that appeared.
	Path string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

// TagWatcher watches .git/refs/tags and emits debounced TagEvents.
type TagWatcher struct {
	tagsDir  string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan TagEvent
	errors   chan error
	done     chan struct{}

	mu      sync.Mutex
	running bool
	pending map[string]*time.Timer
}

// NewTagWatcher creates a watcher for the repository rooted at repoRoot.
func NewTagWatcher(repoRoot string, debounce time.Duration) (*TagWatcher, error) {
	tagsDir := filepath.Join(repoRoot, ".git", "refs", "tags")
	if _, err := os.Stat(tagsDir); err != nil {
		return nil, fmt.Errorf("not a git repository (no %s): %w", tagsDir, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &TagWatcher{
		tagsDir:  tagsDir,
		debounce: debounce,
		watcher:  fsWatcher,
		events:   make(chan TagEvent, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Start begins watching for new tags.
func (w *TagWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addRecursive(w.tagsDir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher.
func (w *TagWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)

	return w.watcher.Close()
}

// Events returns the channel of tag events.
func (w *TagWatcher) Events() <-chan TagEvent {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *TagWatcher) Errors() <-chan error {
	return w.errors
}

// addRecursive watches dir and any nested ref directories.
func (w *TagWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *TagWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleEvent debounces ref creation and rewrite events per path.
func (w *TagWatcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	// A new nested ref directory (e.g. refs/tags/release/) must be watched
	// before the ref file inside it appears.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		_ = w.addRecursive(event.Name)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Reset(w.debounce)
		return
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.emit(path)
	})
}

func (w *TagWatcher) emit(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	tag, err := filepath.Rel(w.tagsDir, path)
	if err != nil {
		return
	}

	select {
	case w.events <- TagEvent{
		Tag:       filepath.ToSlash(tag),
		Path:      path,
		Timestamp: time.Now(),
	}:
	case <-w.done:
	}
}
