package listings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FILE WATCHER: Reload On Change
// ═══════════════════════════════════════════════════════════════════════════════
// An export job usually rewrites the listing files in several steps (create,
// write, rename). The watcher follows the directories holding a FileSource's
// files and waits for a quiet period before it calls back, so one export
// produces one reload:
//
//	write ─┐
//	write ─┼─ debounce ──► onChange()
//	rename ┘
// ═══════════════════════════════════════════════════════════════════════════════

// WatchOptions configures a FileWatcher.
type WatchOptions struct {
	Debounce time.Duration // Quiet period before onChange fires (default: 200ms)
}

// DefaultWatchOptions returns the standard watcher settings
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{Debounce: 200 * time.Millisecond}
}

// FileWatcher calls onChange whenever a file matching the source path is
// created, written, renamed or removed.
type FileWatcher struct {
	source   *FileSource
	options  WatchOptions
	onChange func()
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher watches every directory that can hold a file of source.
func NewFileWatcher(source *FileSource, options WatchOptions, onChange func()) (*FileWatcher, error) {
	if options.Debounce <= 0 {
		options.Debounce = DefaultWatchOptions().Debounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{source: source, options: options, onChange: onChange, watcher: w}
	for _, dir := range fw.dirs() {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// dirs returns the distinct parent directories of the source's files, or
// the pattern's static base when nothing matches yet.
func (fw *FileWatcher) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}

	files, err := fw.source.Files()
	if err != nil || len(files) == 0 {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(fw.source.Path))
		add(filepath.FromSlash(base))
		return out
	}
	for _, f := range files {
		add(filepath.Dir(f))
	}
	return out
}

// Run processes events until ctx is done, then closes the watcher.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.stop()
	slog.Info("watching listing files", slog.String("path", fw.source.Path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("file watcher error", slog.String("error", err.Error()))
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if !fw.relevant(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	slog.Debug("listing file event",
		slog.String("op", event.Op.String()),
		slog.String("file", event.Name))

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.options.Debounce, fw.onChange)
}

// relevant reports whether name is one of the source's files.
func (fw *FileWatcher) relevant(name string) bool {
	pattern := filepath.Clean(fw.source.Path)
	name = filepath.Clean(name)
	if pattern == name {
		return true
	}
	ok, _ := doublestar.PathMatch(pattern, name)
	return ok
}

func (fw *FileWatcher) stop() {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	fw.watcher.Close()
}
