// Package driving defines the interfaces the outer adapters (the CLI, the
// terminal browser and the MCP server) call into. Each pipeline stage has
// its own port so an adapter depends only on what it uses.
//
// Implementations live in internal/core/services.
package driving
