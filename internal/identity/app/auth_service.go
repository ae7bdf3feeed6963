package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/virtnum/gateway/internal/identity/domain"
	"github.com/virtnum/gateway/internal/identity/repository"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUsernameExists = errors.New("username already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrSessionInvalid = errors.New("session is invalid or expired")
var ErrValidation = errors.New("validation failed")

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type AuthConfig struct {
	SessionSecret      string
	SessionExpiryHours int
}

// SessionToken is the signed token handed to the client plus the metadata
// needed to set the cookie.
type SessionToken struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      AuthConfig
	logger      *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config AuthConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
		logger:      logger.With("service", "auth"),
	}
}

// Register creates a user with a zero balance and opens a session for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, *SessionToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(password) < 6 {
		return nil, nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", "error", err, "username", username)
		return nil, nil, errors.New("failed to process registration")
	}

	newUser := &domain.User{
		Username:       username,
		HashedPassword: hashedPassword,
		Balance:        decimal.Zero,
		IsAdmin:        false,
	}

	createdUser, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, nil, ErrUsernameExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user", "error", err, "username", username)
		return nil, nil, errors.New("failed to save registration")
	}

	token, err := s.openSession(ctx, createdUser.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", createdUser.ID, "username", createdUser.Username)
	return createdUser, token, nil
}

// Login verifies credentials and opens a session. Failures are deliberately
// indistinguishable between unknown user and wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *SessionToken, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Failed to look up user for login", "error", err, "username", username)
		return nil, nil, err
	}

	if !CheckPasswordHash(password, user.HashedPassword) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

// Logout revokes the session row; the signed token is useless afterwards even
// though it has not yet expired.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		s.logger.ErrorContext(ctx, "Failed to delete session", "error", err, "session_id", sessionID)
		return err
	}
	return nil
}

// ValidateSession verifies the signed token, checks the backing session row
// and returns the authenticated user plus the session ID.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (*domain.User, string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, "", ErrSessionInvalid
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, "", ErrSessionInvalid
		}
		return nil, "", err
	}
	if session.Expired(time.Now().UTC()) || session.UserID != claims.Subject {
		return nil, "", ErrSessionInvalid
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrSessionInvalid
		}
		return nil, "", err
	}
	return user, session.ID, nil
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, userID string) (*SessionToken, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionExpiryHours) * time.Hour),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist session", "error", err, "user_id", userID)
		return nil, errors.New("failed to open session")
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sign session token", "error", err, "user_id", userID)
		return nil, errors.New("failed to open session")
	}

	return &SessionToken{Token: signed, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}
