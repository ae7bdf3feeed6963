package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityapp "github.com/virtnum/gateway/internal/identity/app"
	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest injects an authenticated caller the way the session
// middleware would.
func authedRequest(req *http.Request, user middleware.AuthenticatedUser) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.AuthenticatedUserContextKey, user)
	return req.WithContext(ctx)
}

func sessionCookie(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range res.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	return nil
}

type mockAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error)
	loginFn    func(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error)
	logoutFn   func(ctx context.Context, sessionID string) error
	getUserFn  func(ctx context.Context, userID string) (*identitydomain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error) {
	return m.registerFn(ctx, username, password)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error) {
	return m.loginFn(ctx, username, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFn(ctx, sessionID)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*identitydomain.User, error) {
	return m.getUserFn(ctx, userID)
}

func sampleUser() *identitydomain.User {
	return &identitydomain.User{
		ID:        "u1",
		Username:  "alice",
		Balance:   decimal.Zero,
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func sampleToken() *identityapp.SessionToken {
	return &identityapp.SessionToken{
		Token:     "signed-token",
		SessionID: "sess-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		registerFn    func(ctx context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error)
		wantStatus    int
		wantCookie    bool
		wantInMessage string
	}{
		{
			name: "successful registration",
			body: `{"username":"alice","password":"password1"}`,
			registerFn: func(_ context.Context, username, password string) (*identitydomain.User, *identityapp.SessionToken, error) {
				return sampleUser(), sampleToken(), nil
			},
			wantStatus: http.StatusCreated,
			wantCookie: true,
		},
		{
			name: "duplicate username",
			body: `{"username":"alice","password":"password1"}`,
			registerFn: func(context.Context, string, string) (*identitydomain.User, *identityapp.SessionToken, error) {
				return nil, nil, identityapp.ErrUsernameExists
			},
			wantStatus:    http.StatusBadRequest,
			wantInMessage: "Username already taken",
		},
		{
			name: "validation failure",
			body: `{"username":"alice","password":"123"}`,
			registerFn: func(context.Context, string, string) (*identitydomain.User, *identityapp.SessionToken, error) {
				return nil, nil, identityapp.ErrValidation
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed payload",
			body:       `{not json`,
			registerFn: nil,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthService{registerFn: tc.registerFn}, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			r := chi.NewRouter()
			handler.RegisterPublicRoutes(r)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)

			cookie := sessionCookie(t, w.Result())
			if tc.wantCookie {
				require.NotNil(t, cookie, "registration must set the session cookie")
				assert.Equal(t, "signed-token", cookie.Value)
				assert.True(t, cookie.HttpOnly)

				var body UserResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "alice", body.Username)
				assert.Equal(t, "0.00", body.Balance)
			} else {
				assert.Nil(t, cookie)
				if tc.wantInMessage != "" {
					var body ErrorResponse
					require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
					assert.Contains(t, body.Message, tc.wantInMessage)
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Run("successful login sets cookie", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthService{
			loginFn: func(context.Context, string, string) (*identitydomain.User, *identityapp.SessionToken, error) {
				return sampleUser(), sampleToken(), nil
			},
		}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"password1"}`))
		w := httptest.NewRecorder()
		r := chi.NewRouter()
		handler.RegisterPublicRoutes(r)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		cookie := sessionCookie(t, w.Result())
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthService{
			loginFn: func(context.Context, string, string) (*identitydomain.User, *identityapp.SessionToken, error) {
				return nil, nil, identityapp.ErrInvalidCredentials
			},
		}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
		w := httptest.NewRecorder()
		r := chi.NewRouter()
		handler.RegisterPublicRoutes(r)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, sessionCookie(t, w.Result()))
	})
}

func TestLogoutHandler(t *testing.T) {
	var revokedSessionID string
	handler := NewAuthHandler(&mockAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			revokedSessionID = sessionID
			return nil
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = authedRequest(req, middleware.AuthenticatedUser{ID: "u1", Username: "alice", SessionID: "sess-1"})
	w := httptest.NewRecorder()
	r := chi.NewRouter()
	handler.RegisterProtectedRoutes(r)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", revokedSessionID)

	cookie := sessionCookie(t, w.Result())
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "logout must clear the session cookie")
}

func TestCurrentUserHandler(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{
		getUserFn: func(_ context.Context, userID string) (*identitydomain.User, error) {
			require.Equal(t, "u1", userID)
			return sampleUser(), nil
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req = authedRequest(req, middleware.AuthenticatedUser{ID: "u1", Username: "alice", SessionID: "sess-1"})
	w := httptest.NewRecorder()
	r := chi.NewRouter()
	handler.RegisterProtectedRoutes(r)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.ID)
	assert.Equal(t, "alice", body.Username)
}
