package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListEstablishments returns all establishments.
func (c *Client) ListEstablishments(ctx context.Context) ([]member.Establishment, error) {
	var out []member.Establishment
	if err := c.doRequest(ctx, http.MethodGet, "/establishments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEstablishment returns one establishment.
func (c *Client) GetEstablishment(ctx context.Context, id int64) (*member.Establishment, error) {
	var out member.Establishment
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/establishments/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEstablishment creates an establishment.
func (c *Client) CreateEstablishment(ctx context.Context, body member.EstablishmentBody) (*member.Establishment, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Establishment
	if err := c.doRequest(ctx, http.MethodPost, "/establishments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEstablishment replaces an establishment's fields.
func (c *Client) UpdateEstablishment(ctx context.Context, id int64, body member.EstablishmentBody) (*member.Establishment, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Establishment
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/establishments/%d", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEstablishment removes an establishment.
func (c *Client) DeleteEstablishment(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/establishments/%d", id), nil, nil)
}

// LinkEstablishmentLodge attaches a lodge to an establishment.
func (c *Client) LinkEstablishmentLodge(ctx context.Context, estID, lodgeID int64) error {
	body := member.LinkLodgeBody{LodgeID: lodgeID}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/establishments/%d/lodges", estID), body, nil)
}

// UnlinkEstablishmentLodge detaches a lodge from an establishment.
func (c *Client) UnlinkEstablishmentLodge(ctx context.Context, estID, lodgeID int64) error {
	body := member.LinkLodgeBody{LodgeID: lodgeID}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/establishments/%d/lodges", estID), body, nil)
}
