package auth

import (
	"context"
	"time"
)

// Session is the identity proven by a verified token. It is handed to
// service calls explicitly; nothing reads it from globals.
type Session struct {
	UserID    int64
	FullName  string
	Email     string
	ExpiresAt time.Time
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session stored by the auth middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
