package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/virtnum/gateway/internal/identity/domain"
	"github.com/virtnum/gateway/internal/platform/database"
)

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateUser = errors.New("username already exists")
var ErrSessionNotFound = errors.New("session not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByIDForUpdate locks the user row for the duration of the enclosing
	// transaction. It is the serialization point for all balance changes.
	GetByIDForUpdate(ctx context.Context, q database.Querier, id string) (*domain.User, error)
	UpdateBalance(ctx context.Context, q database.Querier, id string, newBalance decimal.Decimal) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
