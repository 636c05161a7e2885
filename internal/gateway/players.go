package gateway

import (
	"context"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
	"github.com/mcoot/squadbook/internal/txn"
)

// Players is the gateway for Player records
type Players struct {
	executor *txn.Executor
}

// NewPlayers creates a Players gateway
func NewPlayers(executor *txn.Executor) *Players {
	return &Players{executor: executor}
}

// AddOrUpdate inserts player when its ID is zero and replaces the stored
// record otherwise. A new ID is written back only after the insert commits.
func (g *Players) AddOrUpdate(ctx context.Context, player *model.Player) error {
	id, err := txn.Value(ctx, g.executor, model.KindPlayer, func(ctx context.Context, u storage.Unit) (model.PlayerID, error) {
		if err := player.Validate(); err != nil {
			return 0, err
		}
		saved := *player
		if err := u.SavePlayer(ctx, &saved); err != nil {
			return 0, err
		}
		return saved.ID, nil
	})
	if err != nil {
		return err
	}
	player.ID = id
	return nil
}

// Delete removes the player with the given ID. Deleting an unknown ID fails.
func (g *Players) Delete(ctx context.Context, id model.PlayerID) error {
	return g.executor.Do(ctx, model.KindPlayer, func(ctx context.Context, u storage.Unit) error {
		return u.DeletePlayer(ctx, id)
	})
}

// FindAll returns every player in ID order
func (g *Players) FindAll(ctx context.Context) ([]model.Player, error) {
	return txn.Value(ctx, g.executor, model.KindPlayer, func(ctx context.Context, u storage.Unit) ([]model.Player, error) {
		return u.ListPlayers(ctx)
	})
}

// FindByID returns the player with the given ID
func (g *Players) FindByID(ctx context.Context, id model.PlayerID) (model.Player, error) {
	return txn.Value(ctx, g.executor, model.KindPlayer, func(ctx context.Context, u storage.Unit) (model.Player, error) {
		matches, err := u.PlayersByID(ctx, id)
		if err != nil {
			return model.Player{}, err
		}
		return exactlyOne(matches, "PLAYER_LOOKUP_FAILED", "id", id)
	})
}
