package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListEvents returns all events.
func (c *Client) ListEvents(ctx context.Context, q member.ListQuery) ([]member.Event, error) {
	var out []member.Event
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/events", q.Values()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMyEvents returns the events the caller is invited to.
func (c *Client) ListMyEvents(ctx context.Context) ([]member.Event, error) {
	var out []member.Event
	if err := c.doRequest(ctx, http.MethodGet, "/events/mine", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent returns one event.
func (c *Client) GetEvent(ctx context.Context, id int64) (*member.Event, error) {
	var out member.Event
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/events/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, body member.EventBody) (*member.Event, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Event
	if err := c.doRequest(ctx, http.MethodPost, "/events", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent updates the fields set in body.
func (c *Client) UpdateEvent(ctx context.Context, id int64, body member.UpdateEventBody) (*member.Event, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Event
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

// ListEventLodges returns the lodges invited to an event.
func (c *Client) ListEventLodges(ctx context.Context, id int64) ([]member.Lodge, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/events/%d/lodges", id), nil, &raw); err != nil {
		return nil, err
	}
	var out []member.Lodge
	if err := decodeWrapped(raw, "lodges", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LinkEventLodge invites a lodge to an event.
func (c *Client) LinkEventLodge(ctx context.Context, eventID, lodgeID int64) error {
	body := member.LinkLodgeBody{LodgeID: lodgeID}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/events/%d/lodges", eventID), body, nil)
}

// UnlinkEventLodge withdraws a lodge's invitation.
func (c *Client) UnlinkEventLodge(ctx context.Context, eventID, lodgeID int64) error {
	body := member.LinkLodgeBody{LodgeID: lodgeID}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/events/%d/lodges", eventID), body, nil)
}

// SetRSVP records the caller's answer.
func (c *Client) SetRSVP(ctx context.Context, eventID int64, status string) error {
	body := member.RSVPBody{Status: status}
	if err := member.Validate(body); err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/events/%d/rsvp", eventID), body, nil)
}

// GetRSVP returns the caller's answer.
func (c *Client) GetRSVP(ctx context.Context, eventID int64) (*member.RSVP, error) {
	var out member.RSVP
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/events/%d/rsvp", eventID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEventStats returns invitation counts. Admin only.
func (c *Client) GetEventStats(ctx context.Context, eventID int64) (*member.EventStats, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/events/%d/stats", eventID), nil, &raw); err != nil {
		return nil, err
	}
	var out member.EventStats
	if err := decodeWrapped(raw, "stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
