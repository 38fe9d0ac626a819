package stdio

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/request"
	"github.com/osvs/memberportal/internal/domain/session"
	"github.com/osvs/memberportal/internal/port/outbound"
)

// PageInput pages a list tool.
type PageInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of items to return"`
	Offset int `json:"offset,omitempty" jsonschema:"number of items to skip"`
}

func (p PageInput) query() member.ListQuery {
	return member.ListQuery{Limit: p.Limit, Offset: p.Offset}
}

// EventInput selects one event.
type EventInput struct {
	ID int64 `json:"id" jsonschema:"event id"`
}

// NoInput is the input of tools without arguments.
type NoInput struct{}

// WhoamiResult describes the signed-in member, if any.
type WhoamiResult struct {
	Authenticated bool     `json:"authenticated"`
	ID            int64    `json:"id,omitempty"`
	Username      string   `json:"username,omitempty"`
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Roles         []string `json:"roles"`
}

// LodgesResult lists lodges.
type LodgesResult struct {
	Lodges []member.Lodge `json:"lodges"`
}

// EventsResult lists events.
type EventsResult struct {
	Events []member.Event `json:"events"`
}

// EventResult holds one event.
type EventResult struct {
	Event member.Event `json:"event"`
}

// PostsResult lists news items.
type PostsResult struct {
	Posts []member.Post `json:"posts"`
}

// toolSet holds one Hook per tool so each tool is its own call site.
type toolSet struct {
	portal outbound.PortalReader
	cache  *session.Cache

	lodges *request.Hook[[]member.Lodge]
	events *request.Hook[[]member.Event]
	event  *request.Hook[*member.Event]
	posts  *request.Hook[[]member.Post]
}

func newToolSet(portal outbound.PortalReader, cache *session.Cache, notices *notice.Channel) *toolSet {
	return &toolSet{
		portal: portal,
		cache:  cache,
		lodges: request.New[[]member.Lodge](notices),
		events: request.New[[]member.Event](notices),
		event:  request.New[*member.Event](notices),
		posts:  request.New[[]member.Post](notices),
	}
}

func (s *toolSet) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "whoami",
		Description: "Returns the member signed in to the portal, if any",
	}, s.whoami)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_lodges",
		Description: "Lists the lodges of the order",
	}, s.listLodges)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "Lists upcoming and past events",
	}, s.listEvents)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_event",
		Description: "Fetches one event by id",
	}, s.getEvent)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_posts",
		Description: "Lists news items; requires a signed-in member",
	}, s.listPosts)
}

func (s *toolSet) close() {
	s.lodges.Close()
	s.events.Close()
	s.event.Close()
	s.posts.Close()
}

func (s *toolSet) whoami(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, WhoamiResult, error) {
	if err := s.cache.Wait(ctx); err != nil {
		return nil, WhoamiResult{}, err
	}
	p := s.cache.Principal()
	if p == nil {
		return nil, WhoamiResult{Roles: []string{}}, nil
	}
	return nil, WhoamiResult{
		Authenticated: true,
		ID:            p.ID,
		Username:      p.Username,
		Name:          p.FullName(),
		Email:         p.Email,
		Roles:         p.RoleNames(),
	}, nil
}

func (s *toolSet) listLodges(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, LodgesResult, error) {
	lodges, err := s.lodges.Run(ctx, func(ctx context.Context) ([]member.Lodge, error) {
		return s.portal.ListLodges(ctx, in.query())
	})
	if err != nil {
		return nil, LodgesResult{}, toolError(err)
	}
	return nil, LodgesResult{Lodges: nonNil(lodges)}, nil
}

func (s *toolSet) listEvents(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, EventsResult, error) {
	events, err := s.events.Run(ctx, func(ctx context.Context) ([]member.Event, error) {
		return s.portal.ListEvents(ctx, in.query())
	})
	if err != nil {
		return nil, EventsResult{}, toolError(err)
	}
	return nil, EventsResult{Events: nonNil(events)}, nil
}

func (s *toolSet) getEvent(ctx context.Context, _ *mcp.CallToolRequest, in EventInput) (*mcp.CallToolResult, EventResult, error) {
	if in.ID <= 0 {
		return nil, EventResult{}, errors.New("id must be positive")
	}
	ev, err := s.event.Run(ctx, func(ctx context.Context) (*member.Event, error) {
		return s.portal.GetEvent(ctx, in.ID)
	})
	if apierror.IsNotFound(err) {
		return nil, EventResult{}, fmt.Errorf("event %d not found", in.ID)
	}
	if err != nil {
		return nil, EventResult{}, toolError(err)
	}
	if ev == nil {
		return nil, EventResult{}, fmt.Errorf("event %d not found", in.ID)
	}
	return nil, EventResult{Event: *ev}, nil
}

func (s *toolSet) listPosts(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, PostsResult, error) {
	if err := s.cache.Wait(ctx); err != nil {
		return nil, PostsResult{}, err
	}
	if !s.cache.Authenticated() {
		return nil, PostsResult{}, errors.New("login required; run `osvs login` first")
	}
	posts, err := s.posts.Run(ctx, func(ctx context.Context) ([]member.Post, error) {
		return s.portal.ListPosts(ctx, in.query())
	})
	if err != nil {
		return nil, PostsResult{}, toolError(err)
	}
	return nil, PostsResult{Posts: nonNil(posts)}, nil
}

// toolError turns a classified backend failure into the message shown to
// the agent.
func toolError(err error) error {
	return errors.New(apierror.Message(err))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
