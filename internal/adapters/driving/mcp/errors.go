// Package mcp provides an MCP (Model Context Protocol) server adapter for
// modeldoc. It lets AI assistants run the documentation pipeline and read
// the run history.
package mcp

import "errors"

// ErrMissingPipeline is returned when the pipeline is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline is required")
