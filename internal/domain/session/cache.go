package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/osvs/memberportal/internal/domain/auth"
)

// ErrNoPrincipal is returned when the backend accepted a login but did not
// return a principal.
var ErrNoPrincipal = errors.New("login succeeded but no principal was returned")

// Cache owns the current session. All mutation goes through Start, Login,
// Logout and Refresh; reads return copies.
type Cache struct {
	backend Backend
	logger  *slog.Logger

	mu        sync.RWMutex
	state     State
	principal *auth.Principal
	// version increments on every caller-driven transition so a slow startup
	// probe cannot overwrite a newer login or logout.
	version  uint64
	observer Observer

	startOnce sync.Once
	started   chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// NewCache creates a Cache in StateUnknown. Call Start to issue the probe.
func NewCache(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		logger:  slog.Default(),
		state:   StateUnknown,
		started: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the startup probe exactly once. Later calls wait for the
// first probe and return the settled state.
func (c *Cache) Start(ctx context.Context) State {
	c.startOnce.Do(func() {
		defer close(c.started)

		c.mu.RLock()
		version := c.version
		c.mu.RUnlock()

		p, err := c.backend.Me(ctx)
		if err != nil || p == nil {
			if err != nil {
				c.logger.Debug("session probe failed", "error", err)
			}
			c.commitProbe(version, StateAnonymous, nil)
			return
		}
		c.commitProbe(version, StateAuthenticated, p)
	})
	return c.State()
}

// Wait blocks until the startup probe has settled or ctx is done.
func (c *Cache) Wait(ctx context.Context) error {
	select {
	case <-c.started:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login sends credentials to the backend. On failure the transport error is
// returned and the session is left as it was.
func (c *Cache) Login(ctx context.Context, email, password string) (*auth.Principal, error) {
	p, err := c.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoPrincipal
	}
	c.set(StateAuthenticated, p)
	return p.Clone(), nil
}

// Logout asks the backend to end the session and always clears the local
// session, even when the network call fails.
func (c *Cache) Logout(ctx context.Context) {
	if err := c.backend.Logout(ctx); err != nil {
		c.logger.Warn("logout request failed, clearing local session anyway", "error", err)
	}
	c.set(StateAnonymous, nil)
}

// Refresh re-probes the backend. On success the session is repopulated; on
// any failure it is cleared and nil is returned. Refresh never fails.
func (c *Cache) Refresh(ctx context.Context) *auth.Principal {
	p, err := c.backend.Me(ctx)
	if err != nil || p == nil {
		if err != nil {
			c.logger.Debug("session refresh failed", "error", err)
		}
		c.set(StateAnonymous, nil)
		return nil
	}
	c.set(StateAuthenticated, p)
	return p.Clone()
}

// State returns the current state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Authenticated reports whether a principal is cached.
func (c *Cache) Authenticated() bool {
	return c.State() == StateAuthenticated
}

// Principal returns a copy of the cached principal, or nil.
func (c *Cache) Principal() *auth.Principal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.principal.Clone()
}

// OnChange installs the single observer, replacing any previous one.
func (c *Cache) OnChange(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

func (c *Cache) set(state State, p *auth.Principal) {
	c.mu.Lock()
	c.version++
	c.apply(state, p)
}

// commitProbe applies the probe result unless a caller-driven transition
// happened while the probe was in flight.
func (c *Cache) commitProbe(version uint64, state State, p *auth.Principal) {
	c.mu.Lock()
	if c.version != version {
		c.mu.Unlock()
		return
	}
	c.apply(state, p)
}

// apply must be called with c.mu held; it releases the lock before
// notifying the observer.
func (c *Cache) apply(state State, p *auth.Principal) {
	c.state = state
	c.principal = p.Clone()
	obs := c.observer
	snapshot := c.principal.Clone()
	c.mu.Unlock()

	if obs != nil {
		obs(state, snapshot)
	}
}
