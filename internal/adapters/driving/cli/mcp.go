package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scenetext/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can read
translation progress and pending entries, and validate translations.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  scenetext -p hearts/project.toml mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  scenetext mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVar(&mcpPort, "port", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Status:    svc.Status,
		Validator: svc.Validator,
		Runs:      svc.Runs,
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return runMCPHTTP(server, cmd, addr)
	}
	return runMCPStdio(server, cmd)
}

// Replaced in tests.
var (
	runMCPStdio = func(s *mcp.Server, cmd *cobra.Command) error {
		return s.Run(commandContext(cmd))
	}
	runMCPHTTP = func(s *mcp.Server, cmd *cobra.Command, addr string) error {
		return s.RunHTTP(commandContext(cmd), addr)
	}
)
