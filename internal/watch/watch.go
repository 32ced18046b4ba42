// Package watch rebuilds the site when its sources change.
package watch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"braces.dev/errtrace"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle
// before it rebuilds.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directory trees and calls Rebuild
// once changes inside them settle.
type Watcher struct {
	// Rebuild is called after a burst of changes.
	// Errors are logged and do not stop the watcher.
	Rebuild func(context.Context) error // required

	// Debounce is the quiet period after the last change
	// before Rebuild is called.
	// Defaults to DefaultDebounce.
	Debounce time.Duration

	// Log receives progress and errors.
	// Defaults to discarding them.
	Log *log.Logger

	// Ignore lists directories that are never watched.
	// Changes inside them do not trigger a rebuild.
	// Rebuild output written below a watched directory belongs here.
	Ignore []string
}

// Watch watches the given directories and all their subdirectories
// until ctx is cancelled.
// Directories created while watching are watched too.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) (err error) {
	logger := w.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer func() {
		err = errors.Join(err, fsw.Close())
	}()

	ignore, err := absPaths(w.Ignore)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := addTree(fsw, dir, ignore); err != nil {
			return err
		}
	}

	// Not started until the first change.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if ignored(ignore, event.Name) {
				continue
			}
			logger.Printf("Change detected: %v (%v)", event.Name, event.Op)

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := addTree(fsw, event.Name, ignore); err != nil {
					logger.Printf("Error watching %v: %v", event.Name, err)
				}
			}
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Printf("Watcher error: %v", err)

		case <-timer.C:
			logger.Printf("Rebuilding")
			if err := w.Rebuild(ctx); err != nil {
				logger.Printf("Error during rebuild: %v", err)
			}
		}
	}
}

func addTree(fsw *fsnotify.Watcher, root string, ignore []string) error {
	return errtrace.Wrap(filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if ignored(ignore, path) {
			return fs.SkipDir
		}
		return fsw.Add(path)
	}))
}

func absPaths(paths []string) ([]string, error) {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		abs = append(abs, a)
	}
	return abs, nil
}

// ignored reports whether path is one of the ignored directories
// or lies inside one. ignore holds absolute paths.
func ignored(ignore []string, path string) bool {
	if len(ignore) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range ignore {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
