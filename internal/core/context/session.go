// Package context provides request-scoped values carried across the engine:
// tracing info and the cashier session identity.
package context

import (
	"context"
)

// SessionContext identifies the cashier session a request belongs to.
// One session owns exactly one active draft and its pending queue.
type SessionContext struct {
	SessionID string
	Terminal  string
	Cashier   string
}

type sessionContextKey struct{}

// WithSession adds SessionContext to context.
func WithSession(ctx context.Context, session *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// GetSession returns SessionContext from context, or nil.
func GetSession(ctx context.Context) *SessionContext {
	if v, ok := ctx.Value(sessionContextKey{}).(*SessionContext); ok {
		return v
	}
	return nil
}

// GetSessionID returns the session ID from context or empty string.
func GetSessionID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.SessionID
	}
	return ""
}
