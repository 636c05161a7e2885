package redis

import (
	"time"

	"github.com/mcoot/squadbook/internal/session"
)

// Config holds Redis connection and session settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL is the idle lifetime of a session
	TTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		TTL:          session.DefaultTTL,
	}
}
