// Package session holds "who is logged in" for the lifetime of the client
// and mediates every operation that changes it.
package session

import (
	"context"

	"github.com/osvs/memberportal/internal/domain/auth"
)

// State is the session state machine.
//
//	unknown --probe ok--> authenticated
//	unknown --probe err--> anonymous
//	anonymous --login--> authenticated
//	authenticated --logout | failed refresh--> anonymous
type State int

const (
	// StateUnknown is the initial state, before the startup probe settles.
	StateUnknown State = iota
	// StateAnonymous means no principal is logged in.
	StateAnonymous
	// StateAuthenticated means a principal is cached.
	StateAuthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Backend is the remote side of the session.
// This interface is defined in the domain to avoid circular imports.
// Implementations: httpapi.Client (prod), fakes (test).
type Backend interface {
	// Login exchanges credentials for a session and returns the principal.
	Login(ctx context.Context, email, password string) (*auth.Principal, error)

	// Logout invalidates the server-side session.
	Logout(ctx context.Context) error

	// Me returns the principal of the current session.
	Me(ctx context.Context) (*auth.Principal, error)
}

// Observer is notified after every state change with a copy of the principal.
type Observer func(state State, principal *auth.Principal)
