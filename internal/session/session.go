// Package session defines the server-side session store used by the web
// layer. A session is an opaque token mapped to string attributes.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/squadbook/internal/dependencies/random"
)

// ErrNotFound is returned when a token names no live session
var ErrNotFound = errors.New("session not found or expired")

// AttrLogin marks the authenticated identity of a session
const AttrLogin = "login"

// DefaultTTL is the idle lifetime of a session
const DefaultTTL = 30 * time.Minute

const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Store keeps session attributes. Every successful access extends the
// session's idle lifetime. Implementations are safe for concurrent use.
type Store interface {
	// Create starts an empty session and returns its token
	Create(ctx context.Context) (string, error)

	// Exists reports whether token names a live session
	Exists(ctx context.Context, token string) (bool, error)

	// Get reads an attribute. ok is false when the attribute or the
	// session is absent.
	Get(ctx context.Context, token, name string) (value string, ok bool, err error)

	// Set writes an attribute. It returns ErrNotFound for an unknown token.
	Set(ctx context.Context, token, name, value string) error

	// Destroy removes the session. Destroying an unknown token is a no-op.
	Destroy(ctx context.Context, token string) error

	// Close releases the store's connections
	Close() error
}

// NewToken generates a session token
func NewToken(r random.Random) string {
	return r.String(tokenLength, tokenAlphabet)
}
