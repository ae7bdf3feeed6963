package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/virtnum/gateway/internal/ledger/domain"
	"github.com/virtnum/gateway/internal/platform/database"
)

type TransactionRepository interface {
	// Create appends a ledger entry. It takes a Querier so the append can
	// share a transaction with the balance update (and, on purchase, the
	// number insert).
	Create(ctx context.Context, q database.Querier, txn *domain.Transaction) (*domain.Transaction, error)

	// ListByUser returns every committed entry for the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	// SumByUser returns the signed sum of the user's entries. Used by
	// reconciliation to check the ledger invariant.
	SumByUser(ctx context.Context, q database.Querier, userID string) (decimal.Decimal, error)
}
