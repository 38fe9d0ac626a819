package state

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osvs/memberportal/internal/adapter/outbound/httpapi"
)

// AccessCookie is the name of the cookie carrying the access token.
const AccessCookie = "accessToken"

// TokenExpiry reads the expiry of a JWT cookie without verifying it. The
// signature is the backend's business; the CLI only reports when the
// session will need a refresh. ok is false when the cookie is absent or
// carries no expiry.
func TokenExpiry(cookies []httpapi.SavedCookie, name string) (exp time.Time, ok bool, err error) {
	for _, c := range cookies {
		if c.Name != name {
			continue
		}
		claims := &jwt.RegisteredClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(c.Value, claims); err != nil {
			return time.Time{}, false, fmt.Errorf("parse %s cookie: %w", name, err)
		}
		if claims.ExpiresAt == nil {
			return time.Time{}, false, nil
		}
		return claims.ExpiresAt.Time, true, nil
	}
	return time.Time{}, false, nil
}
