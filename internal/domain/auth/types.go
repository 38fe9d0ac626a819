// Package auth contains the domain types for the authenticated principal.
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/osvs/memberportal/internal/domain/member"
)

// Role is a permission tag held by a principal.
type Role string

const (
	// RoleAdmin has full access to all operations.
	RoleAdmin Role = "Admin"
	// RoleEditor can publish content and award degrees.
	RoleEditor Role = "Editor"
	// RoleMember is the default role of an active member.
	RoleMember Role = "Member"
)

// UnmarshalJSON accepts a bare string or an object carrying name, role,
// roleName or id, which are the shapes the backend has used for roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Role(s)
		return nil
	}

	var obj struct {
		Name     string          `json:"name"`
		Role     string          `json:"role"`
		RoleName string          `json:"roleName"`
		ID       json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode role: %w", err)
	}
	switch {
	case obj.Name != "":
		*r = Role(obj.Name)
	case obj.Role != "":
		*r = Role(obj.Role)
	case obj.RoleName != "":
		*r = Role(obj.RoleName)
	case len(obj.ID) > 0:
		s := string(obj.ID)
		if unq, err := strconv.Unquote(s); err == nil {
			s = unq
		}
		*r = Role(s)
	}
	return nil
}

// Principal is the authenticated member as returned by GET /auth/me.
type Principal struct {
	member.User
	// Roles is a set of permission tags. Order and duplicates carry no meaning.
	Roles []Role `json:"roles,omitempty"`
}

// HasRole returns true if the principal has the specified role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the principal has any of the specified roles.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the principal may award degrees and edit roles.
func (p *Principal) IsStaff() bool {
	return p.HasAnyRole(RoleAdmin, RoleEditor)
}

// RoleNames returns the roles as plain strings.
func (p *Principal) RoleNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		names = append(names, string(r))
	}
	return names
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	c.Roles = append([]Role(nil), p.Roles...)
	c.Achievements = append([]member.UserAchievement(nil), p.Achievements...)
	return &c
}
