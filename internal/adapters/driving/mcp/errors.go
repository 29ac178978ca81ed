// Package mcp provides an MCP (Model Context Protocol) server adapter for scenetext.
// It lets AI assistants read translation progress and documents, and check
// translations before they are inserted.
package mcp

import "errors"

// ErrMissingStatusReporter is returned when the status service is not provided.
var ErrMissingStatusReporter = errors.New("mcp: status service is required")

// errUnknownDocument is returned when a name matches no document.
var errUnknownDocument = errors.New("unknown document")
