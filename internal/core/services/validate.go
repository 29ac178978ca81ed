package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Ensure ValidateService implements the interface.
var _ driving.Validator = (*ValidateService)(nil)

// ValidateService runs every insertion pass as a dry run.
type ValidateService struct {
	inserter *InsertService
}

// NewValidateService creates a new validate service.
func NewValidateService(ws *Workspace) *ValidateService {
	return &ValidateService{inserter: NewInsertService(ws)}
}

// Validate encodes every selected entry and sizes every pool placement
// without writing. All documents are checked even when some fail.
func (s *ValidateService) Validate(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	opts.DryRun = true
	opts.OnlyChanged = false

	report := domain.NewReport(domain.RunValidate)
	var errs []error
	for _, pass := range []func(context.Context, driving.InsertOptions) (*domain.Report, error){
		s.inserter.InsertStory,
		s.inserter.InsertMenu,
	} {
		r, err := pass(ctx, opts)
		report.Merge(r)
		if err != nil {
			errs = append(errs, err)
		}
	}
	logger.Info("validated %d documents: %d failures, %d diagnostics",
		len(report.Processed)+len(report.Failures), len(report.Failures), len(report.Diagnostics))
	return report, errors.Join(errs...)
}
