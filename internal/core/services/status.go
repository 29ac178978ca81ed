package services

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports translation progress per document.
type StatusService struct {
	ws *Workspace
}

// NewStatusService creates a new status service.
func NewStatusService(ws *Workspace) *StatusService {
	return &StatusService{ws: ws}
}

// Status returns the status counts of the document at path, or of every
// story and menu document when path is empty.
func (s *StatusService) Status(ctx context.Context, path string) ([]driving.DocumentStatus, error) {
	var paths []string
	if path != "" {
		paths = []string{path}
	} else {
		for _, sub := range []string{storyDir, menuDir} {
			dir := s.ws.docDir(sub)
			names, err := listFiles(dir, s.ws.Docs.Ext())
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				paths = append(paths, filepath.Join(dir, n))
			}
		}
	}

	out := make([]driving.DocumentStatus, 0, len(paths))
	for _, p := range paths {
		counts, err := s.ws.Docs.Stats(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, driving.DocumentStatus{Path: p, Counts: counts})
	}
	return out, nil
}

// Document loads the document at path.
func (s *StatusService) Document(ctx context.Context, path string) (*domain.TextDocument, error) {
	return s.ws.Docs.Load(ctx, path)
}
