package storage

import (
	"context"

	"github.com/mcoot/squadbook/internal/model"
)

// Backend is a transactional store that hands out one Unit per logical
// operation. Implementations are safe for concurrent use; Units are not.
type Backend interface {
	// Open borrows a working handle. The caller must Close it.
	Open(ctx context.Context) (Unit, error)

	// Close releases the backend's shared resources (pools, files)
	Close() error
}

// Unit is a single unit of work against a Backend.
// Entity operations are only valid between Begin and Commit/Rollback.
type Unit interface {
	// Transaction controls
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Close releases the handle. If a transaction is still open it is
	// rolled back first.
	Close() error

	// Player operations
	// SavePlayer inserts the player when its ID is zero (assigning the new ID
	// in place) and replaces the stored record otherwise.
	SavePlayer(ctx context.Context, player *model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayers(ctx context.Context) ([]model.Player, error)
	PlayersByID(ctx context.Context, id model.PlayerID) ([]model.Player, error)

	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
	UsersByID(ctx context.Context, id model.UserID) ([]model.User, error)
	UsersByLogin(ctx context.Context, login string) ([]model.User, error)
}
