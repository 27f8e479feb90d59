package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	gnfs "gitnote/internal/fs"
	"gitnote/internal/note"
)

// watchDebounce is how long a file must stay quiet before it is re-read.
const watchDebounce = 100 * time.Millisecond

// Update is the freshly resolved state of one watched file.
type Update struct {
	Reference string
	Annotated *note.Annotated
}

// Watch re-reads notes whenever files change until ctx is cancelled.
//
// With a rawPath, only that file is watched and it is emitted once up front.
// With an empty rawPath, the whole working tree is watched (minus paths in
// .gitnoteignore) and only files that already have a record are emitted.
func (a *NoteApp) Watch(ctx context.Context, rawPath string, emit func(Update) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	var (
		accept func(rel string) bool
		ignore *gnfs.IgnoreMatcher
	)
	if rawPath != "" {
		rel, err := a.resolve(rawPath)
		if err != nil {
			return err
		}
		// Editors often replace files by rename, so watch the directory.
		if err := fw.Add(filepath.Dir(filepath.Join(a.Root(), filepath.FromSlash(rel)))); err != nil {
			return fmt.Errorf("watching %s: %w", rel, err)
		}
		accept = func(candidate string) bool { return candidate == rel }
		if err := a.emitUpdate(rel, emit); err != nil {
			return err
		}
	} else {
		patterns, err := gnfs.LoadIgnoreFile(a.Root())
		if err != nil {
			return err
		}
		ignore = gnfs.NewIgnoreMatcher(patterns)
		if err := a.addTree(fw, a.Root(), ignore); err != nil {
			return err
		}
		accept = func(candidate string) bool {
			if ignore.Match(candidate, false) {
				return false
			}
			_, err := a.repo.Get(note.Identity(candidate))
			return err == nil
		}
	}

	a.logger.Info("watching", "path", rawPath, "root", a.Root())

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, ok := a.relative(event.Name)
			if !ok {
				continue
			}
			if ignore != nil && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := a.addTree(fw, event.Name, ignore); err != nil {
						a.logger.Warn("watching new directory", "path", rel, "error", err)
					}
					continue
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if accept(rel) {
					pending[rel] = time.Now()
				}
			}

		case <-ticker.C:
			now := time.Now()
			for rel, t := range pending {
				if now.Sub(t) < watchDebounce {
					continue
				}
				delete(pending, rel)
				if err := a.emitUpdate(rel, emit); err != nil {
					return err
				}
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		}
	}
}

// emitUpdate reads rel and hands it to emit. Files that vanished or became
// unreadable between the event and the read are skipped.
func (a *NoteApp) emitUpdate(rel string, emit func(Update) error) error {
	annotated, err := a.service.Read(rel)
	if err != nil {
		if errors.Is(err, note.ErrStorage) {
			return err
		}
		a.logger.Warn("skipping unreadable file", "path", rel, "error", err)
		return nil
	}
	return emit(Update{Reference: rel, Annotated: annotated})
}

// addTree watches dir and every directory below it that is not ignored.
func (a *NoteApp) addTree(fw *fsnotify.Watcher, dir string, ignore *gnfs.IgnoreMatcher) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := a.relative(path); ok && ignore.Match(rel, true) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// relative maps an absolute path under the root to its slash form.
// The root itself maps to ".".
func (a *NoteApp) relative(path string) (string, bool) {
	rel, err := filepath.Rel(a.Root(), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
