package mcp

import (
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Status lists documents with their progress and loads them.
	Status driving.StatusReporter

	// Validator checks translations without writing game files.
	Validator driving.Validator

	// Runs lists recorded pipeline runs.
	Runs driving.RunHistory
}

// Validate ensures all required ports are set.
// Validator and Runs are optional; their tool and resource are not registered without them.
func (p *Ports) Validate() error {
	if p.Status == nil {
		return ErrMissingStatusReporter
	}
	return nil
}
