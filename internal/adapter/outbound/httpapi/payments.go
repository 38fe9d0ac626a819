package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/osvs/memberportal/internal/domain/member"
)

// CreateMembershipPayment starts a yearly fee payment. Stripe answers with a
// client secret, Swish with a status token.
func (c *Client) CreateMembershipPayment(ctx context.Context, provider member.Provider, body member.MembershipBody) (*member.Checkout, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	path, err := membershipPath(provider)
	if err != nil {
		return nil, err
	}
	var out member.Checkout
	if err := c.doRequest(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMembershipPayment returns one membership payment.
func (c *Client) GetMembershipPayment(ctx context.Context, provider member.Provider, id int64) (*member.MembershipPayment, error) {
	path, err := membershipPath(provider)
	if err != nil {
		return nil, err
	}
	var out member.MembershipPayment
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%d", path, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MembershipStatus looks up a membership payment by its status token.
func (c *Client) MembershipStatus(ctx context.Context, provider member.Provider, token string) (*member.PaymentState, error) {
	path, err := membershipPath(provider)
	if err != nil {
		return nil, err
	}
	var out member.PaymentState
	if err := c.doRequest(ctx, http.MethodGet, path+"/status/"+url.PathEscape(token), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyMemberships lists the caller's membership payments, optionally for one
// year.
func (c *Client) MyMemberships(ctx context.Context, year int) ([]member.MembershipPayment, error) {
	q := url.Values{}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	var out []member.MembershipPayment
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/stripe/membership", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEventPayment starts a Stripe payment for an event fee.
func (c *Client) CreateEventPayment(ctx context.Context, eventID int64) (*member.Checkout, error) {
	var out member.Checkout
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/stripe/event/%d", eventID), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEventPayment returns the caller's payment for an event.
func (c *Client) GetEventPayment(ctx context.Context, eventID int64) (*member.EventPayment, error) {
	var out member.EventPayment
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stripe/event/%d", eventID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EventPaymentStatus looks up an event payment by its status token.
func (c *Client) EventPaymentStatus(ctx context.Context, token string) (*member.PaymentState, error) {
	var out member.PaymentState
	if err := c.doRequest(ctx, http.MethodGet, "/stripe/event/status/"+url.PathEscape(token), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func membershipPath(p member.Provider) (string, error) {
	switch p {
	case member.ProviderStripe, "":
		return "/stripe/membership", nil
	case member.ProviderSwish:
		return "/swish/membership", nil
	default:
		return "", fmt.Errorf("unknown payment provider %q", p)
	}
}
