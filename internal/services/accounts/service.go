// Package accounts handles user registration, credential checks and the
// login attribute of a session.
package accounts

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/session"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginTaken         = errors.New("login already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// UserStore is the subset of the user gateway the service needs
type UserStore interface {
	AddOrUpdate(ctx context.Context, user *model.User) error
	FindByLogin(ctx context.Context, login string) (model.User, error)
}

// Config holds configuration for the accounts service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default accounts configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles accounts and session identity
type Service struct {
	users    UserStore
	sessions session.Store
	cost     int
}

// New creates a new accounts Service
func New(users UserStore, sessions session.Store, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cost:     cfg.BcryptCost,
	}
}

// Register creates a user with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, login, password, confirm string) (model.User, error) {
	login = strings.TrimSpace(login)
	if password == "" {
		return model.User{}, ErrEmptyPassword
	}
	if password != confirm {
		return model.User{}, ErrPasswordMismatch
	}

	// A failed lookup is the normal case; the gateway cannot tell
	// "absent" from other failures, and the insert below catches races.
	if _, err := s.users.FindByLogin(ctx, login); err == nil {
		return model.User{}, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{Login: login, Password: string(hash)}
	if err := s.users.AddOrUpdate(ctx, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Authenticate checks a login and password pair
func (s *Service) Authenticate(ctx context.Context, login, password string) (model.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SignIn marks the session identified by token as logged in as user
func (s *Service) SignIn(ctx context.Context, token string, user model.User) error {
	return s.sessions.Set(ctx, token, session.AttrLogin, user.Login)
}

// SignOut destroys the session
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// CurrentLogin returns the login stored in the session, if any
func (s *Service) CurrentLogin(ctx context.Context, token string) (string, bool, error) {
	return s.sessions.Get(ctx, token, session.AttrLogin)
}
