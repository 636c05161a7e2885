package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/squadbook/internal/errutil"
	"github.com/mcoot/squadbook/internal/session"
	"github.com/mcoot/squadbook/internal/web/response"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

// Sessions loads the request's session, creating one when the request
// carries no live token, and attaches the token to the request context
func Sessions(store session.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				ok, err := store.Exists(ctx, cookie.Value)
				if err != nil {
					errutil.LogError(logger, "session lookup failed", err)
					response.WriteError(w, response.NewInternalError())
					return
				}
				if ok {
					next.ServeHTTP(w, r.WithContext(WithSessionToken(ctx, cookie.Value)))
					return
				}
			}

			token, err := store.Create(ctx)
			if err != nil {
				errutil.LogError(logger, "session create failed", err)
				response.WriteError(w, response.NewInternalError())
				return
			}
			SetSessionCookie(w, token)
			next.ServeHTTP(w, r.WithContext(WithSessionToken(ctx, token)))
		})
	}
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
