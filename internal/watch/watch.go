// Package watch re-converts headers when they are saved.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wotwrh-convert/internal/filewalker"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Handler is called once per header after its writes have settled.
type Handler func(ctx context.Context, path string)

// Watcher watches directories for header files being created or written and
// hands each changed file to a Handler after a debounce period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	walker   *filewalker.Walker
	debounce time.Duration
	handle   Handler

	mu      sync.Mutex
	pending map[string]time.Time // path → time of the latest event
}

// New creates a Watcher. Files are filtered with walker.Matches.
func New(walker *filewalker.Walker, debounce time.Duration, handle Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		walker:   walker,
		debounce: debounce,
		handle:   handle,
		pending:  make(map[string]time.Time),
	}, nil
}

// Add starts watching dir and, when the walker is recursive, every
// subdirectory other than output directories.
func (w *Watcher) Add(dir string) error {
	return w.addTree(dir, false, time.Time{})
}

// addTree watches root and its subdirectories. With queue set, headers
// already present are recorded as changed at now.
func (w *Watcher) addTree(root string, queue bool, now time.Time) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			if queue && w.walker.Matches(path) {
				w.mu.Lock()
				w.pending[path] = now
				w.mu.Unlock()
			}
			return nil
		}

		if path != root && (!w.walker.Recursive() || w.walker.IsOutputDir(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		log.Info().Str("dir", path).Msg("Watching for header changes")
		return nil
	})
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, time.Now())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// handleEvent records create and write events for header files. A directory
// created under a recursive watch is watched too, and the headers it already
// holds are queued.
func (w *Watcher) handleEvent(event fsnotify.Event, now time.Time) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) && w.walker.Recursive() {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.walker.IsOutputDir(event.Name) {
				return
			}
			if err := w.addTree(event.Name, true, now); err != nil {
				log.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
			}
			return
		}
	}
	if !w.walker.Matches(event.Name) {
		return
	}

	log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Header changed")

	w.mu.Lock()
	w.pending[event.Name] = now
	w.mu.Unlock()
}

// flush hands every path whose last event is older than the debounce period
// to the handler and returns those paths.
func (w *Watcher) flush(ctx context.Context, now time.Time) []string {
	w.mu.Lock()
	var due []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range due {
		w.handle(ctx, path)
	}
	return due
}
