package services

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.Watcher = (*WatchService)(nil)

// WatchService re-inserts documents when they change on disk.
type WatchService struct {
	ws       *Workspace
	watcher  driven.ChangeWatcher
	inserter *InsertService
}

// NewWatchService creates a new watch service.
func NewWatchService(ws *Workspace, watcher driven.ChangeWatcher) *WatchService {
	return &WatchService{ws: ws, watcher: watcher, inserter: NewInsertService(ws)}
}

// Watch runs an only-changed insertion of the story or menu documents
// whenever one of them is created or written. Deletions are ignored.
func (s *WatchService) Watch(ctx context.Context, opts driving.InsertOptions, notify func(driving.WatchEvent)) error {
	root := s.ws.Project.Resolve(s.ws.Project.Paths.TranslatedFiles)
	changes, err := s.watcher.Watch(ctx, root)
	if err != nil {
		return err
	}
	logger.Info("watching %s", root)

	opts.OnlyChanged = true
	for change := range changes {
		if change.Type == domain.ChangeDeleted {
			continue
		}
		var pass func(context.Context, driving.InsertOptions) (*domain.Report, error)
		switch filepath.Base(filepath.Dir(change.Path)) {
		case storyDir:
			pass = s.inserter.InsertStory
		case menuDir:
			pass = s.inserter.InsertMenu
		default:
			continue
		}
		report, err := pass(ctx, opts)
		if notify != nil {
			notify(driving.WatchEvent{Change: change, Report: report, Err: err})
		}
	}
	return nil
}
