// Package state persists the CLI session between runs.
//
// The session file stores the backend the session belongs to, the cookies
// the backend handed out, and the last known principal. This package
// provides atomic writes, file locking, and backup functionality.
package state

import (
	"time"

	"github.com/osvs/memberportal/internal/adapter/outbound/httpapi"
	"github.com/osvs/memberportal/internal/domain/auth"
)

// SchemaVersion is the current session file schema.
const SchemaVersion = "1"

// SessionFile is the top-level structure persisted in session.json.
type SessionFile struct {
	// Version is the schema version for forward compatibility.
	Version string `json:"version"`

	// Backend is the backend root URL the cookies were issued by.
	Backend string `json:"backend"`

	// Cookies are the session cookies, including path-scoped ones.
	Cookies []httpapi.SavedCookie `json:"cookies"`

	// Principal is the last principal the backend confirmed. It is a display
	// cache only; the startup probe decides whether the session is live.
	Principal *auth.Principal `json:"principal,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// For reports whether the file belongs to the given backend.
func (f *SessionFile) For(backend string) bool {
	return f != nil && f.Backend == backend
}
