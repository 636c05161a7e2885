package gateway

import (
	"context"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
	"github.com/mcoot/squadbook/internal/txn"
)

// Users is the gateway for User records
type Users struct {
	executor *txn.Executor
}

// NewUsers creates a Users gateway
func NewUsers(executor *txn.Executor) *Users {
	return &Users{executor: executor}
}

// AddOrUpdate inserts or replaces user. The password is stored as given.
func (g *Users) AddOrUpdate(ctx context.Context, user *model.User) error {
	id, err := txn.Value(ctx, g.executor, model.KindUser, func(ctx context.Context, u storage.Unit) (model.UserID, error) {
		if err := user.Validate(); err != nil {
			return 0, err
		}
		saved := *user
		if err := u.SaveUser(ctx, &saved); err != nil {
			return 0, err
		}
		return saved.ID, nil
	})
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// FindByLogin returns the single user with the given login
func (g *Users) FindByLogin(ctx context.Context, login string) (model.User, error) {
	return txn.Value(ctx, g.executor, model.KindUser, func(ctx context.Context, u storage.Unit) (model.User, error) {
		matches, err := u.UsersByLogin(ctx, login)
		if err != nil {
			return model.User{}, err
		}
		return exactlyOne(matches, "USER_LOOKUP_FAILED", "login", login)
	})
}

// FindByID returns the user with the given ID
func (g *Users) FindByID(ctx context.Context, id model.UserID) (model.User, error) {
	return txn.Value(ctx, g.executor, model.KindUser, func(ctx context.Context, u storage.Unit) (model.User, error) {
		matches, err := u.UsersByID(ctx, id)
		if err != nil {
			return model.User{}, err
		}
		return exactlyOne(matches, "USER_LOOKUP_FAILED", "id", id)
	})
}

// FindAll returns every user in ID order
func (g *Users) FindAll(ctx context.Context) ([]model.User, error) {
	return txn.Value(ctx, g.executor, model.KindUser, func(ctx context.Context, u storage.Unit) ([]model.User, error) {
		return u.ListUsers(ctx)
	})
}
