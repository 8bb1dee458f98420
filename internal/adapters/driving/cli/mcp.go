package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/modeldoc/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server so AI assistants can run the pipeline
and read the run history.

Tools: run_pipeline, document_model, audit_changes
Resources: modeldoc://runs, modeldoc://runs/{runId}

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead; it binds to 127.0.0.1 unless --host says otherwise.

Examples:
  modeldoc mcp serve
  modeldoc mcp serve --port 8080
  modeldoc mcp serve --port 8080 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Pipeline: pipelineService,
		History:  historyService,
		Version:  version,
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
