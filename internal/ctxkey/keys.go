// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// LoggerKey is the context key type for the command-scoped logger.
type LoggerKey struct{}

// NoticeKey is the context key type for the transient error channel.
type NoticeKey struct{}

// SessionKey is the context key type for the session cache.
type SessionKey struct{}
