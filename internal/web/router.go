// Package web assembles the HTTP router.
package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/squadbook/internal/services/accounts"
	"github.com/mcoot/squadbook/internal/session"
	"github.com/mcoot/squadbook/internal/web/handler"
	"github.com/mcoot/squadbook/internal/web/middleware"
)

// DefaultBasePath is the prefix of every gated route
const DefaultBasePath = "/app"

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger   *slog.Logger
	BasePath string
	Sessions session.Store
	Accounts *accounts.Service
	Players  handler.PlayerStore

	// Gatherer serves /metrics; Registerer receives the HTTP counters.
	// Both may be nil.
	Gatherer   prometheus.Gatherer
	Registerer prometheus.Registerer
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}

	httpMetrics := middleware.NewHTTPMetrics(cfg.Registerer)

	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Probes and metrics sit outside the gate
	ops := r.NewRoute().Subrouter()
	ops.Use(middleware.Metrics(httpMetrics))
	ops.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		ops.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	authHandler := handler.NewAuthHandler(cfg.Accounts, basePath, cfg.Logger)
	playersHandler := handler.NewPlayersHandler(cfg.Players, cfg.Logger)

	app := mux.NewRouter().PathPrefix(basePath).Subrouter()
	app.Use(middleware.Metrics(httpMetrics))

	// Public: the gate lets these through by path
	app.HandleFunc("/login", authHandler.LoginStatus).Methods(http.MethodGet)
	app.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	app.HandleFunc("/createAccount", authHandler.CreateAccount).Methods(http.MethodPost)

	// Protected
	app.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	app.HandleFunc("/players", playersHandler.List).Methods(http.MethodGet)
	app.HandleFunc("/players", playersHandler.Save).Methods(http.MethodPost)
	app.HandleFunc("/players/{id}", playersHandler.Get).Methods(http.MethodGet)
	app.HandleFunc("/players/{id}", playersHandler.Delete).Methods(http.MethodDelete)

	// The gate wraps the whole base path, so unknown paths under it are
	// gated too rather than answered with a bare 404
	var gated http.Handler = app
	gated = middleware.Gate(cfg.Sessions, basePath, cfg.Logger)(gated)
	gated = middleware.Flash()(gated)
	gated = middleware.Sessions(cfg.Sessions, cfg.Logger)(gated)
	r.PathPrefix(basePath).Handler(gated)

	return r
}
