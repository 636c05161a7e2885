package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/web/response"
)

// PlayerStore is the player gateway as seen by the handlers
type PlayerStore interface {
	AddOrUpdate(ctx context.Context, player *model.Player) error
	Delete(ctx context.Context, id model.PlayerID) error
	FindAll(ctx context.Context) ([]model.Player, error)
	FindByID(ctx context.Context, id model.PlayerID) (model.Player, error)
}

// PlayersHandler serves the player endpoints
type PlayersHandler struct {
	players PlayerStore
	logger  *slog.Logger
}

// NewPlayersHandler creates a new PlayersHandler
func NewPlayersHandler(players PlayerStore, logger *slog.Logger) *PlayersHandler {
	return &PlayersHandler{
		players: players,
		logger:  logger,
	}
}

// List returns every player
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.FindAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, players)
}

// Save adds a player when the body has no id and updates it otherwise
func (h *PlayersHandler) Save(w http.ResponseWriter, r *http.Request) {
	var player model.Player
	if err := json.NewDecoder(r.Body).Decode(&player); err != nil {
		response.WriteError(w, response.NewInvalidRequestError("Invalid player JSON"))
		return
	}

	status := http.StatusOK
	if player.IsNew() {
		status = http.StatusCreated
	}

	if err := h.players.AddOrUpdate(r.Context(), &player); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, status, player)
}

// Get returns one player
func (h *PlayersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	player, err := h.players.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, player)
}

// Delete removes one player
func (h *PlayersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	if err := h.players.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}

func playerID(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		response.WriteError(w, response.NewInvalidRequestError("Invalid player id"))
		return 0, false
	}
	return model.PlayerID(id), true
}
