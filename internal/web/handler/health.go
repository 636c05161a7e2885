package handler

import (
	"net/http"

	"github.com/mcoot/squadbook/internal/web/response"
)

// Health answers liveness probes
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
