package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identityapp "github.com/virtnum/gateway/internal/identity/app"
	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

// AuthService is the slice of the identity service the auth handler needs.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error)
	Login(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error)
	Logout(ctx context.Context, sessionID string) error
	GetUser(ctx context.Context, userID string) (*identitydomain.User, error)
}

// AuthHandler handles registration, login, logout and the current-user read.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("handler", "auth"),
	}
}

// RegisterPublicRoutes mounts the routes that need no session.
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

// RegisterProtectedRoutes mounts the routes behind the session middleware.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
	r.Get("/user", h.handleCurrentUser)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			jsonError(w, "Request body is empty", http.StatusBadRequest)
			return
		}
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identityapp.ErrValidation):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, identityapp.ErrUsernameExists):
			jsonError(w, "Username already taken", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "Registration failed", "error", err, "username", req.Username)
			jsonError(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identityapp.ErrInvalidCredentials) {
			jsonError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(r.Context(), "Login failed", "error", err, "username", req.Username)
		jsonError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), authUser.SessionID); err != nil {
		h.logger.ErrorContext(r.Context(), "Logout failed", "error", err, "session_id", authUser.SessionID)
		jsonError(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.GetUser(r.Context(), authUser.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load current user", "error", err, "user_id", authUser.ID)
		jsonError(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user))
}

func setSessionCookie(w http.ResponseWriter, token *identityapp.SessionToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
