package services

import (
	"context"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunHistory = (*RunService)(nil)

// RunService lists runs recorded in the ledger.
type RunService struct {
	ws *Workspace
}

// NewRunService creates a new run history service.
func NewRunService(ws *Workspace) *RunService {
	return &RunService{ws: ws}
}

// Runs returns up to limit runs, newest first.
func (s *RunService) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.ws.Ledger == nil {
		return nil, nil
	}
	return s.ws.Ledger.Runs(ctx, limit)
}
