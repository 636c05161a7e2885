// Package redis is a session store shared between server instances through
// Redis. Each session is a hash whose expiry is refreshed on every access.
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/dependencies/clock"
	"github.com/mcoot/squadbook/internal/dependencies/random"
	"github.com/mcoot/squadbook/internal/session"
)

// maxCreateAttempts bounds token regeneration on collision
const maxCreateAttempts = 5

// Store is a Redis-backed implementation of session.Store
type Store struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
	random random.Random
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config, clk clock.Clock, rnd random.Random) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrap(err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
	}

	return NewWithClient(client, cfg, clk, rnd), nil
}

// NewWithClient creates a Store over an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock, rnd random.Random) *Store {
	if cfg.TTL == 0 {
		cfg.TTL = session.DefaultTTL
	}
	return &Store{
		client: client,
		cfg:    cfg,
		clock:  clk,
		random: rnd,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Create(ctx context.Context) (string, error) {
	created := strconv.FormatInt(s.clock.Now().Unix(), 10)

	for i := 0; i < maxCreateAttempts; i++ {
		token := session.NewToken(s.random)
		key := sessionKey(token)

		ok, err := s.client.HSetNX(ctx, key, createdField, created).Result()
		if err != nil {
			return "", oops.Code("SESSION_CREATE_FAILED").Wrap(err)
		}
		if !ok {
			continue
		}
		if err := s.client.Expire(ctx, key, s.cfg.TTL).Err(); err != nil {
			return "", oops.Code("SESSION_CREATE_FAILED").Wrap(err)
		}
		return token, nil
	}
	return "", oops.Code("SESSION_CREATE_FAILED").Errorf("no free token after %d attempts", maxCreateAttempts)
}

func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	// EXPIRE answers false for a missing key, so one call both checks
	// and refreshes
	ok, err := s.client.Expire(ctx, sessionKey(token), s.cfg.TTL).Result()
	if err != nil {
		return false, oops.Code("SESSION_READ_FAILED").Wrap(err)
	}
	return ok, nil
}

func (s *Store) Get(ctx context.Context, token, name string) (string, bool, error) {
	key := sessionKey(token)

	var get *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, key, name)
		pipe.Expire(ctx, key, s.cfg.TTL)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, oops.Code("SESSION_READ_FAILED").With("attr", name).Wrap(err)
	}

	value, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("SESSION_READ_FAILED").With("attr", name).Wrap(err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, token, name, value string) error {
	key := sessionKey(token)

	ok, err := s.Exists(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrNotFound
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, name, value)
		pipe.Expire(ctx, key, s.cfg.TTL)
		return nil
	})
	if err != nil {
		return oops.Code("SESSION_WRITE_FAILED").With("attr", name).Wrap(err)
	}
	return nil
}

func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").Wrap(err)
	}
	return nil
}
