// Package factory wires the application together. The App it returns owns
// the backend and session store and releases them on Close.
package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/squadbook/internal/config"
	"github.com/mcoot/squadbook/internal/dependencies/clock"
	"github.com/mcoot/squadbook/internal/dependencies/random"
	"github.com/mcoot/squadbook/internal/gateway"
	"github.com/mcoot/squadbook/internal/services/accounts"
	"github.com/mcoot/squadbook/internal/session"
	sessionmemory "github.com/mcoot/squadbook/internal/session/memory"
	sessionredis "github.com/mcoot/squadbook/internal/session/redis"
	"github.com/mcoot/squadbook/internal/storage"
	"github.com/mcoot/squadbook/internal/storage/memory"
	"github.com/mcoot/squadbook/internal/storage/postgres"
	"github.com/mcoot/squadbook/internal/storage/sqlite"
	"github.com/mcoot/squadbook/internal/txn"
	"github.com/mcoot/squadbook/internal/web"
)

// App contains all wired application components
type App struct {
	Logger *slog.Logger

	// Persistence
	Backend  storage.Backend
	Executor *txn.Executor
	Players  *gateway.Players
	Users    *gateway.Users

	// Sessions and accounts
	Sessions session.Store
	Accounts *accounts.Service

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Metrics
	Registry *prometheus.Registry
}

// New creates a new application from cfg with all dependencies wired.
// A nil logger discards output.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(ctx, cfg, backend); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}

	clk := clock.New()
	rnd := random.New()

	sessions, err := openSessions(ctx, cfg, clk, rnd)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return newWithDependencies(backend, sessions, clk, rnd, accounts.DefaultConfig(), logger), nil
}

// OpenBackend opens the persistence backend selected by cfg.StorageType
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.StorageType {
	case config.StorageMemory, "":
		return memory.New(), nil
	case config.StorageSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoragePostgres:
		s, err := postgres.New(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}
}

// Migrate applies schema migrations for the SQL backends. The memory
// backend needs none.
func Migrate(ctx context.Context, cfg config.Config, backend storage.Backend) error {
	switch b := backend.(type) {
	case *sqlite.Storage:
		return b.Migrate(ctx)
	case *postgres.Storage:
		return postgres.Migrate(cfg.DatabaseURL)
	default:
		return nil
	}
}

func openSessions(ctx context.Context, cfg config.Config, clk clock.Clock, rnd random.Random) (session.Store, error) {
	switch cfg.SessionStore {
	case config.SessionMemory, "":
		return sessionmemory.New(clk, rnd, cfg.SessionTTL), nil
	case config.SessionRedis:
		redisCfg := sessionredis.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.TTL = cfg.SessionTTL
		store, err := sessionredis.New(ctx, redisCfg, clk, rnd)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid session store %q", cfg.SessionStore)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(backend storage.Backend, sessions session.Store, clk clock.Clock, rnd random.Random, accountsCfg accounts.Config, logger *slog.Logger) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	executor := txn.New(backend, logger, txn.NewMetrics(registry))
	players := gateway.NewPlayers(executor)
	users := gateway.NewUsers(executor)

	return &App{
		Logger:   logger,
		Backend:  backend,
		Executor: executor,
		Players:  players,
		Users:    users,
		Sessions: sessions,
		Accounts: accounts.New(users, sessions, accountsCfg),
		Clock:    clk,
		Random:   rnd,
		Registry: registry,
	}
}

// Handler builds the HTTP router for the app
func (a *App) Handler(basePath string) http.Handler {
	return web.NewRouter(web.RouterConfig{
		Logger:     a.Logger,
		BasePath:   basePath,
		Sessions:   a.Sessions,
		Accounts:   a.Accounts,
		Players:    a.Players,
		Gatherer:   a.Registry,
		Registerer: a.Registry,
	})
}

// Close releases the session store and the backend
func (a *App) Close() error {
	return errors.Join(a.Sessions.Close(), a.Backend.Close())
}
