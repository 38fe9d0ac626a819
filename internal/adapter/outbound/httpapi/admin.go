package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListAchievements returns the awardable achievements. The backend wraps
// the list as {"achievements": [...]}; a missing list is empty.
func (c *Client) ListAchievements(ctx context.Context) ([]member.Achievement, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/achievements", nil, &raw); err != nil {
		return nil, err
	}
	out := []member.Achievement{}
	if err := decodeWrapped(raw, "achievements", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []member.Achievement{}
	}
	return out, nil
}

// ListRoles returns the assignable roles. Both a bare array and
// {"roles": [...]} are accepted, and the role name may arrive as "name",
// "role" or "roleName".
func (c *Client) ListRoles(ctx context.Context) ([]member.Role, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/admin/roles", nil, &raw); err != nil {
		return nil, err
	}
	var wire []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		RoleName string `json:"roleName"`
	}
	if err := decodeWrapped(raw, "roles", &wire); err != nil {
		return nil, err
	}
	out := make([]member.Role, 0, len(wire))
	for _, r := range wire {
		name := r.Name
		if name == "" {
			name = r.Role
		}
		if name == "" {
			name = r.RoleName
		}
		out = append(out, member.Role{ID: r.ID, Name: name})
	}
	return out, nil
}

// CleanupTokens purges expired refresh tokens on the backend.
func (c *Client) CleanupTokens(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/admin/cleanup-tokens", nil, nil)
}
