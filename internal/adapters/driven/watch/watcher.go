// Package watch reports changes to translation documents using fsnotify.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher streams changes to files with one extension under a directory tree.
type Watcher struct {
	ext string
}

// New creates a watcher for files ending in ext.
func New(ext string) *Watcher {
	return &Watcher{ext: ext}
}

// Watch adds dir and every subdirectory, then streams changes until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.FileChange, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(fw, dir); err != nil {
		fw.Close()
		return nil, err
	}

	changes := make(chan domain.FileChange)
	go func() {
		defer close(changes)
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) && isDir(ev.Name) {
					if err := addTree(fw, ev.Name); err != nil {
						logger.Warn("watch %s: %v", ev.Name, err)
					}
					continue
				}
				change := w.handleEvent(ev)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher: %v", err)
			}
		}
	}()
	return changes, nil
}

// handleEvent converts an fsnotify event to a document change.
// Hidden files, directories and other extensions are ignored.
func (w *Watcher) handleEvent(ev fsnotify.Event) *domain.FileChange {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), w.ext) {
		return nil
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: ev.Name}
	case ev.Has(fsnotify.Create):
		if isDir(ev.Name) {
			return nil
		}
		return &domain.FileChange{Type: domain.ChangeCreated, Path: ev.Name}
	case ev.Has(fsnotify.Write):
		return &domain.FileChange{Type: domain.ChangeUpdated, Path: ev.Name}
	default:
		return nil
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
