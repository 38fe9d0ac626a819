package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListUsers returns the member directory.
func (c *Client) ListUsers(ctx context.Context, q member.UserQuery) ([]member.User, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/users", q.Values()), nil, &raw); err != nil {
		return nil, err
	}
	var out []member.User
	if err := decodeWrapped(raw, "users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns one member.
func (c *Client) GetUser(ctx context.Context, id int64) (*member.User, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &raw); err != nil {
		return nil, err
	}
	var out member.User
	if err := decodeWrapped(raw, "user", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe updates the caller's own profile.
func (c *Client) UpdateMe(ctx context.Context, body member.UpdateUserBody) (*member.User, error) {
	return c.updateUser(ctx, "/users/me", body)
}

// AdminUpdateUser updates another member's profile.
func (c *Client) AdminUpdateUser(ctx context.Context, id int64, body member.UpdateUserBody) (*member.User, error) {
	return c.updateUser(ctx, fmt.Sprintf("/users/%d", id), body)
}

func (c *Client) updateUser(ctx context.Context, path string, body member.UpdateUserBody) (*member.User, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.User
	if err := c.doRequest(ctx, http.MethodPut, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMyPicture replaces the caller's profile picture.
func (c *Client) UploadMyPicture(ctx context.Context, pic Picture) error {
	return c.doRequest(ctx, http.MethodPost, "/users/me/picture", &form{file: "picture", pic: &pic}, nil)
}

// UploadUserPicture replaces another member's profile picture.
func (c *Client) UploadUserPicture(ctx context.Context, id int64, pic Picture) error {
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/users/%d/picture", id), &form{file: "picture", pic: &pic}, nil)
}

// GetUserLodge returns the lodge a member belongs to. Lodge is nil when the
// member belongs to none.
func (c *Client) GetUserLodge(ctx context.Context, id int64) (*member.UserLodge, error) {
	var out member.UserLodge
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%d/lodges", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserLodge moves a member to a lodge; nil removes the membership.
func (c *Client) SetUserLodge(ctx context.Context, id int64, lodgeID *int64) error {
	body := member.SetLodgeBody{LodgeID: lodgeID}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/users/%d/lodges", id), body, nil)
}

// SetRoles replaces a member's roles.
func (c *Client) SetRoles(ctx context.Context, id int64, roleIDs []int64) error {
	body := member.SetRolesBody{RoleIDs: roleIDs}
	if body.RoleIDs == nil {
		body.RoleIDs = []int64{}
	}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/users/%d/roles", id), body, nil)
}

// AddAchievement awards an achievement to a member.
func (c *Client) AddAchievement(ctx context.Context, id int64, body member.AddAchievementBody) error {
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/users/%d/achievements", id), body, nil)
}
