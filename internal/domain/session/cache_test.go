package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/member"
)

// mockBackend is a simple scriptable backend for testing.
type mockBackend struct {
	mu        sync.Mutex
	me        *auth.Principal
	meErr     error
	loginErr  error
	logoutErr error
	meCalls   int
	// meGate, when set, blocks Me until it is closed.
	meGate chan struct{}
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (*auth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.me = &auth.Principal{User: member.User{ID: 1, Email: email}, Roles: []auth.Role{auth.RoleMember}}
	m.meErr = nil
	return m.me.Clone(), nil
}

func (m *mockBackend) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.me = nil
	m.meErr = &apierror.TransportError{Status: 401}
	return m.logoutErr
}

func (m *mockBackend) Me(ctx context.Context) (*auth.Principal, error) {
	m.mu.Lock()
	gate := m.meGate
	m.meCalls++
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meErr != nil {
		return nil, m.meErr
	}
	return m.me.Clone(), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_StartupProbe(t *testing.T) {
	tests := []struct {
		name    string
		backend *mockBackend
		want    State
	}{
		{
			name:    "authenticated when probe succeeds",
			backend: &mockBackend{me: &auth.Principal{User: member.User{ID: 9}}},
			want:    StateAuthenticated,
		},
		{
			name:    "anonymous when probe returns 401",
			backend: &mockBackend{meErr: &apierror.TransportError{Status: 401}},
			want:    StateAnonymous,
		},
		{
			name:    "anonymous when probe fails at network level",
			backend: &mockBackend{meErr: errors.New("connection refused")},
			want:    StateAnonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(tt.backend, WithLogger(quietLogger()))
			if c.State() != StateUnknown {
				t.Fatalf("initial State() = %v, want unknown", c.State())
			}

			if got := c.Start(context.Background()); got != tt.want {
				t.Errorf("Start() = %v, want %v", got, tt.want)
			}
			if (c.Principal() != nil) != (tt.want == StateAuthenticated) {
				t.Errorf("Principal() = %v with state %v", c.Principal(), tt.want)
			}
		})
	}
}

func TestCache_StartProbesOnce(t *testing.T) {
	b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1}}}
	c := NewCache(b, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Start(context.Background())
		}()
	}
	wg.Wait()
	c.Start(context.Background())

	if b.meCalls != 1 {
		t.Errorf("Me() called %d times, want exactly 1", b.meCalls)
	}
}

func TestCache_WaitBlocksUntilProbeSettles(t *testing.T) {
	gate := make(chan struct{})
	b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1}}, meGate: gate}
	c := NewCache(b, WithLogger(quietLogger()))

	go c.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() before probe settles = %v, want deadline exceeded", err)
	}
	if c.State() != StateUnknown {
		t.Errorf("State() = %v while probe in flight, want unknown", c.State())
	}

	close(gate)
	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if c.State() != StateAuthenticated {
		t.Errorf("State() = %v, want authenticated", c.State())
	}
}

func TestCache_LoginDuringProbeWins(t *testing.T) {
	gate := make(chan struct{})
	b := &mockBackend{meErr: &apierror.TransportError{Status: 401}, meGate: gate}
	c := NewCache(b, WithLogger(quietLogger()))

	done := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(done)
	}()

	// Login must not block on the gated probe.
	b.mu.Lock()
	b.meGate = nil
	b.mu.Unlock()
	if _, err := c.Login(context.Background(), "a@b.se", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	close(gate)
	<-done

	if c.State() != StateAuthenticated {
		t.Errorf("State() = %v, want authenticated (probe must not overwrite login)", c.State())
	}
}

func TestCache_Login(t *testing.T) {
	b := &mockBackend{meErr: &apierror.TransportError{Status: 401}}
	c := NewCache(b, WithLogger(quietLogger()))
	c.Start(context.Background())

	p, err := c.Login(context.Background(), "kalle@example.se", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if p.Email != "kalle@example.se" {
		t.Errorf("Login() email = %q", p.Email)
	}
	if c.State() != StateAuthenticated {
		t.Errorf("State() = %v, want authenticated", c.State())
	}
}

func TestCache_LoginFailureLeavesSessionUnset(t *testing.T) {
	wantErr := &apierror.TransportError{Status: 401, Message: "Fel e-post eller lösenord"}
	b := &mockBackend{meErr: &apierror.TransportError{Status: 401}, loginErr: wantErr}
	c := NewCache(b, WithLogger(quietLogger()))
	c.Start(context.Background())

	_, err := c.Login(context.Background(), "kalle@example.se", "wrong")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Login() error = %v, want transport error propagated", err)
	}
	if c.State() != StateAnonymous || c.Principal() != nil {
		t.Errorf("session changed on failed login: %v %v", c.State(), c.Principal())
	}
}

func TestCache_LogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "server accepts logout"},
		{name: "network fails", logoutErr: errors.New("connection reset")},
		{name: "server errors", logoutErr: &apierror.TransportError{Status: 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1}}, logoutErr: tt.logoutErr}
			c := NewCache(b, WithLogger(quietLogger()))
			c.Start(context.Background())

			c.Logout(context.Background())

			if c.State() != StateAnonymous {
				t.Errorf("State() = %v, want anonymous", c.State())
			}
			if c.Principal() != nil {
				t.Error("Principal() should be nil after logout")
			}
		})
	}
}

func TestCache_Refresh(t *testing.T) {
	b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1, Firstname: "Kalle"}}}
	c := NewCache(b, WithLogger(quietLogger()))
	c.Start(context.Background())

	b.mu.Lock()
	b.me = &auth.Principal{User: member.User{ID: 1, Firstname: "Karl"}}
	b.mu.Unlock()

	if p := c.Refresh(context.Background()); p == nil || p.Firstname != "Karl" {
		t.Fatalf("Refresh() = %v, want repopulated principal", p)
	}

	b.mu.Lock()
	b.meErr = errors.New("timeout")
	b.mu.Unlock()

	if p := c.Refresh(context.Background()); p != nil {
		t.Errorf("Refresh() = %v, want nil on failure", p)
	}
	if c.State() != StateAnonymous {
		t.Errorf("State() = %v, want anonymous after failed refresh", c.State())
	}
}

func TestCache_PrincipalIsCopy(t *testing.T) {
	b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1}, Roles: []auth.Role{auth.RoleAdmin}}}
	c := NewCache(b, WithLogger(quietLogger()))
	c.Start(context.Background())

	p := c.Principal()
	p.Roles[0] = auth.RoleMember

	if !c.Principal().HasRole(auth.RoleAdmin) {
		t.Error("mutating a returned principal changed the cache")
	}
}

func TestCache_OnChange(t *testing.T) {
	b := &mockBackend{me: &auth.Principal{User: member.User{ID: 1}}}
	c := NewCache(b, WithLogger(quietLogger()))

	var states []State
	c.OnChange(func(s State, _ *auth.Principal) { states = append(states, s) })

	c.Start(context.Background())
	c.Logout(context.Background())

	if len(states) != 2 || states[0] != StateAuthenticated || states[1] != StateAnonymous {
		t.Errorf("observed states = %v, want [authenticated anonymous]", states)
	}
}

func TestContext(t *testing.T) {
	c := NewCache(&mockBackend{})
	ctx := WithCache(context.Background(), c)
	if FromContext(ctx) != c {
		t.Error("FromContext did not return injected cache")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustFromContext should panic outside provider scope")
		}
	}()
	MustFromContext(context.Background())
}
