package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/session"
	"github.com/osvs/memberportal/internal/port/inbound"
)

const shutdownTimeout = 10 * time.Second

// HTTPTransport is the inbound adapter that serves an MCP server over
// Streamable HTTP. It implements the inbound.ToolServer interface.
type HTTPTransport struct {
	server         *mcp.Server
	addr           string
	allowedOrigins []string
	registry       *prometheus.Registry
	healthChecker  *HealthChecker
	logger         *slog.Logger

	mu       sync.Mutex
	httpSrv  *http.Server
	listener net.Listener
}

// Option is a functional option for configuring HTTPTransport.
type Option func(*HTTPTransport)

// WithAddr sets the listen address. Default is "127.0.0.1:8080".
func WithAddr(addr string) Option {
	return func(t *HTTPTransport) {
		t.addr = addr
	}
}

// WithAllowedOrigins sets the browser origins allowed to reach /mcp.
func WithAllowedOrigins(origins []string) Option {
	return func(t *HTTPTransport) {
		t.allowedOrigins = origins
	}
}

// WithRegistry exposes reg on /metrics and registers the server metrics
// in it. Without a registry a private one is used.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(t *HTTPTransport) {
		t.registry = reg
	}
}

// WithHealthChecker sets the checker behind /health.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(t *HTTPTransport) {
		t.healthChecker = hc
	}
}

// WithLogger sets the logger for the HTTP transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// NewHTTPTransport creates an HTTP transport for server.
func NewHTTPTransport(server *mcp.Server, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		server: server,
		addr:   "127.0.0.1:8080",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = prometheus.NewRegistry()
	}
	if t.healthChecker == nil {
		t.healthChecker = NewHealthChecker(nil, nil, nil, "")
	}
	return t
}

// Handler builds the routed handler. Each call registers a fresh set of
// metrics, so build it once per registry.
func (t *HTTPTransport) Handler() (http.Handler, *Metrics) {
	metrics := NewMetrics(t.registry)

	var mcpHandler http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.server
	}, nil)
	mcpHandler = DNSRebindingProtection(t.allowedOrigins)(mcpHandler)
	mcpHandler = RequestIDMiddleware(t.logger)(mcpHandler)
	mcpHandler = MetricsMiddleware(metrics)(mcpHandler)

	mux := http.NewServeMux()
	mux.Handle("/health", t.healthChecker.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry}))
	mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/mcp/", mcpHandler)
	return mux, metrics
}

// Start listens and serves until ctx is cancelled or the server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	handler, metrics := t.Handler()
	if cache := t.healthChecker.cache; cache != nil {
		cache.OnChange(func(state session.State, _ *auth.Principal) {
			metrics.Authenticated.Set(authenticatedValue(state))
		})
		metrics.Authenticated.Set(authenticatedValue(cache.State()))
	}

	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	t.mu.Lock()
	t.httpSrv, t.listener = srv, ln
	t.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("serving MCP over HTTP", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

func authenticatedValue(state session.State) float64 {
	if state == session.StateAuthenticated {
		return 1
	}
	return 0
}

// Addr returns the bound address once Start is listening, else the
// configured one.
func (t *HTTPTransport) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

func (t *HTTPTransport) shutdown() error {
	t.mu.Lock()
	srv := t.httpSrv
	t.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}
	t.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *HTTPTransport) Close() error {
	return t.shutdown()
}

var _ inbound.ToolServer = (*HTTPTransport)(nil)
