// Package tui provides an interactive terminal browser for translation progress.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI reads from.
type Ports struct {
	// Status lists documents with their progress and loads them.
	Status driving.StatusReporter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Status == nil {
		return ErrMissingStatusReporter
	}
	return nil
}
