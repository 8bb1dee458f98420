package mcp

import (
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Pipeline runs documentation, audit and commit.
	Pipeline driving.Pipeline

	// History reads past runs. Optional; the run resources are empty without it.
	History driving.HistoryService

	// Version is reported to clients during the handshake. Defaults to "dev".
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
