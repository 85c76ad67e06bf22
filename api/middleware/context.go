package middleware

import (
	"context"

	"github.com/frozify/storefront/internal/session"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the shopper session attached by the Session middleware.
func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return v
	}
	return nil
}

func SessionIDFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.ID
	}
	return ""
}

// WithSession injects the shopper session into the context.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}
