// Package stdio serves read-only portal tools to an MCP client over
// stdin/stdout.
package stdio

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/session"
	"github.com/osvs/memberportal/internal/port/inbound"
	"github.com/osvs/memberportal/internal/port/outbound"
)

// StdioTransport is the inbound adapter that serves portal tools on
// stdin/stdout. It implements the inbound.ToolServer interface.
type StdioTransport struct {
	server *mcp.Server
	tools  *toolSet
	logger *slog.Logger
}

// NewStdioTransport creates the MCP server and registers the portal tools.
// Failures are reported to notices as well as returned as tool errors.
func NewStdioTransport(portal outbound.PortalReader, cache *session.Cache, notices *notice.Channel, version string, logger *slog.Logger) *StdioTransport {
	if logger == nil {
		logger = slog.Default()
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "osvs", Version: version}, nil)
	tools := newToolSet(portal, cache, notices)
	tools.register(server)
	return &StdioTransport{server: server, tools: tools, logger: logger}
}

// Server returns the underlying MCP server, for serving on other transports.
func (t *StdioTransport) Server() *mcp.Server {
	return t.server
}

// Start serves on os.Stdin/os.Stdout until ctx is cancelled or the client
// disconnects.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.logger.Info("serving MCP on stdio")
	return t.Serve(ctx, &mcp.StdioTransport{})
}

// WarmSession starts the session probe in the background, bound to the
// server's lifetime rather than to any one tool call. Tool handlers wait for
// it to settle.
func (t *StdioTransport) WarmSession(ctx context.Context) {
	go t.tools.cache.Start(ctx)
}

// Serve runs the server on an arbitrary transport.
func (t *StdioTransport) Serve(ctx context.Context, transport mcp.Transport) error {
	t.WarmSession(ctx)
	err := t.server.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close discards late results from tool calls still in flight.
func (t *StdioTransport) Close() error {
	t.tools.close()
	return nil
}

var _ inbound.ToolServer = (*StdioTransport)(nil)
