package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListLodges returns all lodges.
func (c *Client) ListLodges(ctx context.Context, q member.ListQuery) ([]member.Lodge, error) {
	var out []member.Lodge
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/lodges", q.Values()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLodge returns one lodge.
func (c *Client) GetLodge(ctx context.Context, id int64) (*member.Lodge, error) {
	var out member.Lodge
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/lodges/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLodge creates a lodge.
func (c *Client) CreateLodge(ctx context.Context, body member.LodgeBody) (*member.Lodge, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Lodge
	if err := c.doRequest(ctx, http.MethodPost, "/lodges", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLodge updates the fields set in body.
func (c *Client) UpdateLodge(ctx context.Context, id int64, body member.UpdateLodgeBody) (*member.Lodge, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Lodge
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/lodges/%d", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
