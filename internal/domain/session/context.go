package session

import (
	"context"

	"github.com/osvs/memberportal/internal/ctxkey"
)

// WithCache returns a context carrying c.
func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, ctxkey.SessionKey{}, c)
}

// FromContext returns the cache injected with WithCache, or nil.
func FromContext(ctx context.Context) *Cache {
	c, _ := ctx.Value(ctxkey.SessionKey{}).(*Cache)
	return c
}

// MustFromContext returns the injected cache and panics when none was
// injected. Looking up the session outside its scope is a programming error.
func MustFromContext(ctx context.Context) *Cache {
	c := FromContext(ctx)
	if c == nil {
		panic("session: cache used outside its provider scope")
	}
	return c
}
