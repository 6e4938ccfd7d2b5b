package mcp

import (
	"github.com/clearcite/clearcite-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evidence runs search, retrieval and evidence selection.
	Evidence driving.EvidenceService

	// Answer produces grounded answers. Optional: when nil the
	// grounded_answer tool is not registered.
	Answer driving.AnswerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Evidence == nil {
		return ErrMissingEvidenceService
	}
	return nil
}
