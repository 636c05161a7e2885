package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/squadbook/internal/services/accounts"
	"github.com/mcoot/squadbook/internal/web/middleware"
	"github.com/mcoot/squadbook/internal/web/response"
)

// AuthHandler handles login, account creation and logout
type AuthHandler struct {
	accounts *accounts.Service
	basePath string
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accountsService *accounts.Service, basePath string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accountsService,
		basePath: basePath,
		logger:   logger,
	}
}

// LoginStatus reports whether the current session is logged in
func (h *AuthHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	login, ok, err := h.accounts.CurrentLogin(r.Context(), middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginStatus{
		Authenticated: ok,
		Login:         login,
		Flash:         middleware.GetFlash(r.Context()),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.WriteError(w, response.NewInvalidRequestError("Invalid form data"))
		return
	}

	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("password")
	if login == "" || password == "" {
		response.WriteError(w, response.NewInvalidRequestError("Login and password are required"))
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), login, password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.accounts.SignIn(r.Context(), middleware.SessionToken(r.Context()), user); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user logged in", slog.String("login", user.Login))
	http.Redirect(w, r, joinPath(h.basePath, "/players"), http.StatusSeeOther)
}

// CreateAccount handles account creation and logs the new user in
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.WriteError(w, response.NewInvalidRequestError("Invalid form data"))
		return
	}

	user, err := h.accounts.Register(r.Context(),
		r.FormValue("login"), r.FormValue("password"), r.FormValue("password_confirm"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.accounts.SignIn(r.Context(), middleware.SessionToken(r.Context()), user); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("account created", slog.String("login", user.Login))
	http.Redirect(w, r, joinPath(h.basePath, "/players"), http.StatusSeeOther)
}

// Logout destroys the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), middleware.SessionToken(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, joinPath(h.basePath, "/login"), http.StatusSeeOther)
}
