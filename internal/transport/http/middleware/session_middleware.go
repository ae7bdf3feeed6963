package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
)

// SessionCookieName is the cookie the login handlers set and this middleware
// reads.
const SessionCookieName = "vn_session"

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const AuthenticatedUserContextKey = ContextKey("authenticatedUser")

// AuthenticatedUser is the caller identity handlers read from the request
// context.
type AuthenticatedUser struct {
	ID        string
	Username  string
	IsAdmin   bool
	SessionID string
}

// SessionValidator is the slice of the auth service the middleware needs.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*identitydomain.User, string, error)
}

// SessionMiddleware authenticates requests via the session cookie. Missing,
// invalid, revoked and expired sessions all yield the same 401.
func SessionMiddleware(sessions SessionValidator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			user, sessionID, err := sessions.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "Session validation failed", "error", err)
				unauthorized(w)
				return
			}

			authUser := AuthenticatedUser{
				ID:        user.ID,
				Username:  user.Username,
				IsAdmin:   user.IsAdmin,
				SessionID: sessionID,
			}
			ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(AuthenticatedUserContextKey).(AuthenticatedUser)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Authentication required"})
}
