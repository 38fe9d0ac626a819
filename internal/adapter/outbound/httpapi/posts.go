package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/osvs/memberportal/internal/domain/member"
)

// ListPosts returns the news feed.
func (c *Client) ListPosts(ctx context.Context, q member.ListQuery) ([]member.Post, error) {
	var out []member.Post
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/posts", q.Values()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPost returns one post.
func (c *Client) GetPost(ctx context.Context, id int64) (*member.Post, error) {
	var out member.Post
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes a post with an optional picture.
func (c *Client) CreatePost(ctx context.Context, body member.PostBody, picture *Picture) (*member.Post, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var req any = body
	if picture != nil {
		req = &form{
			fields: map[string]string{"title": body.Title, "description": body.Description},
			file:   "picture",
			pic:    picture,
		}
	}
	var out member.Post
	if err := c.doRequest(ctx, http.MethodPost, "/posts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost updates the fields set in body.
func (c *Client) UpdatePost(ctx context.Context, id int64, body member.UpdatePostBody) (*member.Post, error) {
	if err := member.Validate(body); err != nil {
		return nil, err
	}
	var out member.Post
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
