// Package handler implements the HTTP endpoints of the web layer.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/squadbook/internal/errutil"
	"github.com/mcoot/squadbook/internal/web/response"
)

// writeError answers with the mapped error response. Errors that surface
// as a 500 are logged first since the client only sees a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if response.Status(err) >= http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err,
			"method", r.Method, "path", r.URL.Path)
	}
	response.WriteError(w, err)
}

// joinPath appends suffix to the base path
func joinPath(basePath, suffix string) string {
	return strings.TrimRight(basePath, "/") + suffix
}
