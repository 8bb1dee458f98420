package modelserver

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Version is reported to the model server during the handshake.
const Version = "0.1.0"

// Tool names exposed by the model server.
const (
	toolConnection = "powerbi-model_connection_operations"
	toolMeasure    = "powerbi-model_measure_operations"
	toolDatabase   = "powerbi-model_database_operations"
)

// Ensure Client implements the interface.
var _ driven.ModelServer = (*Client)(nil)

// TransportFunc creates the transport for a new session.
type TransportFunc func(ctx context.Context) (mcp.Transport, error)

// CommandTransport launches command as a subprocess and talks MCP over its
// stdin and stdout.
func CommandTransport(command string, args ...string) TransportFunc {
	return func(_ context.Context) (mcp.Transport, error) {
		path, err := exec.LookPath(command)
		if err != nil {
			return nil, fmt.Errorf("model server %q: %w", command, err)
		}
		// The subprocess outlives Connect, so it is not bound to its context.
		return &mcp.CommandTransport{Command: exec.Command(path, args...)}, nil //nolint:gosec // configured command
	}
}

// Client opens sessions against the model server.
type Client struct {
	client    *mcp.Client
	transport TransportFunc
}

// NewClient creates a new model server client.
func NewClient(transport TransportFunc) *Client {
	return &Client{
		client: mcp.NewClient(&mcp.Implementation{
			Name:    "modeldoc",
			Version: Version,
		}, nil),
		transport: transport,
	}
}

// Connect starts a session and connects it to the model folder at modelPath.
func (c *Client) Connect(ctx context.Context, modelPath string) (driven.ModelSession, error) {
	transport, err := c.transport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	cs, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: handshake: %w", domain.ErrConnection, err)
	}
	session := &Session{cs: cs}

	_, err = session.call(ctx, toolConnection, request{
		"operation":  "ConnectFolder",
		"folderPath": modelPath,
	})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("%w: connect folder %s: %w", domain.ErrConnection, modelPath, err)
	}

	logger.Debug("Connected model server session to %s", modelPath)
	return session, nil
}
