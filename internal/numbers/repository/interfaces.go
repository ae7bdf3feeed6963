package repository

import (
	"context"
	"errors"
	"time"

	"github.com/virtnum/gateway/internal/numbers/domain"
	"github.com/virtnum/gateway/internal/platform/database"
)

var ErrNumberNotFound = errors.New("virtual number not found")

// ErrStatusConflict means a guarded status update found the row in a
// different state than expected (e.g. a concurrent cancel or sweep won).
var ErrStatusConflict = errors.New("number status changed concurrently")

type NumberRepository interface {
	// CreateIn inserts a number inside a caller-owned transaction so the
	// insert commits atomically with the purchase debit.
	CreateIn(ctx context.Context, q database.Querier, number *domain.VirtualNumber) (*domain.VirtualNumber, error)

	GetByID(ctx context.Context, id string) (*domain.VirtualNumber, error)
	GetByProviderOrderID(ctx context.Context, orderID string) (*domain.VirtualNumber, error)
	ListByUser(ctx context.Context, userID string) ([]domain.VirtualNumber, error)

	// UpdateStatus flips id from the expected current status to the target
	// status. Returns ErrStatusConflict if the row is no longer in `from`.
	UpdateStatus(ctx context.Context, q database.Querier, id string, from, to domain.Status) error

	// ExpireDue marks every active number whose lease ran out as expired and
	// returns how many rows were flipped.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}
