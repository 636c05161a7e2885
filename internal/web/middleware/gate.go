package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/squadbook/internal/errutil"
	"github.com/mcoot/squadbook/internal/session"
	"github.com/mcoot/squadbook/internal/web/response"
)

// publicPathMarkers are path fragments that bypass the session check
var publicPathMarkers = []string{"/login", "/createAccount"}

// IsPublicPath reports whether path is reachable without a login
func IsPublicPath(path string) bool {
	for _, marker := range publicPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// Gate forwards requests whose session carries a login and redirects the
// rest to basePath + "/login" with 303 See Other. Public paths are
// forwarded without touching the store.
func Gate(store session.Store, basePath string, logger *slog.Logger) func(http.Handler) http.Handler {
	loginURL := strings.TrimRight(basePath, "/") + "/login"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := SessionToken(r.Context())
			if token == "" {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}

			_, ok, err := store.Get(r.Context(), token, session.AttrLogin)
			if err != nil {
				errutil.LogError(logger, "access check failed", err, "path", r.URL.Path)
				response.WriteError(w, response.NewInternalError())
				return
			}
			if !ok {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
