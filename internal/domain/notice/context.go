package notice

import (
	"context"

	"github.com/osvs/memberportal/internal/ctxkey"
)

// WithChannel returns a context carrying c.
func WithChannel(ctx context.Context, c *Channel) context.Context {
	return context.WithValue(ctx, ctxkey.NoticeKey{}, c)
}

// FromContext returns the channel injected with WithChannel, or nil.
func FromContext(ctx context.Context) *Channel {
	c, _ := ctx.Value(ctxkey.NoticeKey{}).(*Channel)
	return c
}

// MustFromContext returns the injected channel and panics when none was
// injected. Looking up the channel outside its scope is a programming error.
func MustFromContext(ctx context.Context) *Channel {
	c := FromContext(ctx)
	if c == nil {
		panic("notice: channel used outside its provider scope")
	}
	return c
}
