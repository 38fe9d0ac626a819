package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// CreateMail drafts a mail to a lodge.
func (c *Client) CreateMail(ctx context.Context, body member.MailBody) (*member.Mail, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Mail
	if err := c.doRequest(ctx, http.MethodPost, "/mails", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMail delivers a drafted mail.
func (c *Client) SendMail(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/mails/%d/send", id), nil, nil)
}

// Inbox returns the caller's delivered mails.
func (c *Client) Inbox(ctx context.Context) ([]member.InboxEntry, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/mails/inbox", nil, &raw); err != nil {
		return nil, err
	}
	var out []member.InboxEntry
	if err := decodeWrapped(raw, "mails", &out); err != nil {
		return nil, err
	}
	return out, nil
}
