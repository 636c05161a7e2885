// Package middleware holds the HTTP middleware of the web layer: session
// loading, the access gate, flash messages, logging, recovery and metrics.
package middleware

import "context"

type contextKey string

const (
	sessionContextKey contextKey = "session"
	flashContextKey   contextKey = "flash"
)

// SessionToken returns the session token the Sessions middleware attached
// to the request context, or "" if none
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionContextKey).(string)
	return token
}

// WithSessionToken attaches a session token to ctx
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionContextKey, token)
}
