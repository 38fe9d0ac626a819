package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/session"
)

const probeTimeout = 5 * time.Second

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"` // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// Probe reports whether the backend answers.
type Probe func(ctx context.Context) error

// HealthChecker reports session, notice and backend state.
type HealthChecker struct {
	cache   *session.Cache
	notices *notice.Channel
	probe   Probe
	version string
}

// NewHealthChecker creates a HealthChecker. Pass nil for components that
// aren't available.
func NewHealthChecker(cache *session.Cache, notices *notice.Channel, probe Probe, version string) *HealthChecker {
	return &HealthChecker{cache: cache, notices: notices, probe: probe, version: version}
}

// Check performs the health checks. Only an unreachable backend makes the
// report unhealthy; a backend that answers with an API error is up.
func (h *HealthChecker) Check(ctx context.Context) HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.cache != nil {
		checks["session"] = h.cache.State().String()
	} else {
		checks["session"] = "not configured"
	}

	if h.notices != nil {
		if msg, ok := h.notices.Current(); ok {
			checks["notice"] = msg
		} else {
			checks["notice"] = "none"
		}
	}

	if h.probe != nil {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := h.probe(ctx)
		cancel()
		switch {
		case err == nil:
			checks["backend"] = "ok"
		case apierror.StatusOf(err) != 0:
			checks["backend"] = fmt.Sprintf("ok: %d", apierror.StatusOf(err))
		default:
			checks["backend"] = "unreachable: " + apierror.Message(err)
			healthy = false
		}
	} else {
		checks["backend"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{Status: status, Checks: checks, Version: h.version}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
}
