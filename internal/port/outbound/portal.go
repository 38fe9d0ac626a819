// Package outbound defines the outbound port interfaces that inbound adapters
// use to reach the portal backend.
package outbound

import (
	"context"

	"github.com/osvs/memberportal/internal/domain/member"
)

// PortalReader is the read-only slice of the backend API exposed to agents.
type PortalReader interface {
	ListLodges(ctx context.Context, q member.ListQuery) ([]member.Lodge, error)
	ListEvents(ctx context.Context, q member.ListQuery) ([]member.Event, error)
	GetEvent(ctx context.Context, id int64) (*member.Event, error)
	ListPosts(ctx context.Context, q member.ListQuery) ([]member.Post, error)
}
