package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/session"
)

var _ session.Backend = (*Client)(nil)

// Login posts the credentials and then fetches the principal. The backend
// answers the login itself with cookies and an empty body.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Principal, error) {
	body := member.LoginBody{Email: email, Password: password}
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", body, nil); err != nil {
		return nil, err
	}
	return c.Me(ctx)
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the principal of the current session, or nil when the backend
// answers with an empty body.
func (c *Client) Me(ctx context.Context) (*auth.Principal, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &raw); err != nil {
		return nil, err
	}
	var p *auth.Principal
	if err := decodeWrapped(raw, "user", &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Register creates a member account. The picture is optional.
func (c *Client) Register(ctx context.Context, body member.RegisterBody, picture *Picture) (*member.User, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	f := &form{fields: body.Fields(), file: "picture", pic: picture}

	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", f, &raw); err != nil {
		return nil, err
	}
	var u *member.User
	if err := decodeWrapped(raw, "user", &u); err != nil {
		return nil, err
	}
	return u, nil
}

// ForgotPassword asks the backend to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, body member.ForgotPasswordBody) error {
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, "/auth/forgot-password", body, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, body member.ResetPasswordBody) error {
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, "/auth/reset-password", body, nil)
}
