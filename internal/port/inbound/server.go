// Package inbound defines the inbound port interfaces for the portal client.
// The stdio and Streamable HTTP MCP adapters implement these interfaces.
package inbound

import (
	"context"
)

// ToolServer exposes portal operations to an external agent.
type ToolServer interface {
	// Start serves until the context is cancelled or the peer disconnects.
	// Returns nil on graceful shutdown, error on failure.
	Start(ctx context.Context) error

	// Close releases the server's resources.
	Close() error
}
