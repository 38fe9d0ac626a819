// Package http serves the portal tools over MCP Streamable HTTP.
//
// It is the network counterpart of the stdio adapter: the same *mcp.Server
// is mounted behind a middleware chain and exposed next to health and
// metrics endpoints.
//
// # Endpoints
//
//	/mcp      - MCP Streamable HTTP (POST, GET for SSE, DELETE)
//	/health   - JSON health report, 503 when the backend is unreachable
//	/metrics  - Prometheus text exposition
//
// # Middleware Chain
//
// Requests to /mcp pass through, outermost first:
//
//  1. MetricsMiddleware - records duration and status
//  2. RequestIDMiddleware - propagates X-Request-ID and enriches the logger
//  3. DNSRebindingProtection - validates the Origin header
//
// The listener defaults to 127.0.0.1:8080. Requests carrying an Origin
// header are refused unless the origin is allow-listed, so a browser page
// cannot drive the member's session.
package http
