package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
	identityrepo "github.com/virtnum/gateway/internal/identity/repository"
	"github.com/virtnum/gateway/internal/ledger/domain"
	"github.com/virtnum/gateway/internal/ledger/repository"
	"github.com/virtnum/gateway/internal/platform/database"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrInvalidAmount = errors.New("amount must be a positive decimal")
var ErrUserNotFound = errors.New("user not found for ledger operation")

// LedgerService owns per-user balances and the append-only transaction log.
// Every balance change goes through applyIn: lock the user row, apply the
// signed delta, reject if the result would be negative, append the entry.
// Balance and log therefore cannot drift apart.
type LedgerService struct {
	users        identityrepo.UserRepository
	transactions repository.TransactionRepository
	db           database.TxBeginner
	logger       *slog.Logger
}

func NewLedgerService(
	users identityrepo.UserRepository,
	transactions repository.TransactionRepository,
	db database.TxBeginner,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		users:        users,
		transactions: transactions,
		db:           db,
		logger:       logger.With("service", "ledger"),
	}
}

// GetBalance returns the user's current balance.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identityrepo.ErrUserNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// ListTransactions returns every committed entry for the user, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// Apply records a signed balance delta and its ledger entry in one database
// transaction. A debit that would take the balance negative fails with
// ErrInsufficientFunds and leaves no trace.
func (s *LedgerService) Apply(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionKind, description string) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var txErr error
		created, txErr = s.ApplyIn(ctx, tx, userID, amount, kind, description)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyIn is Apply running inside a caller-owned transaction, so callers can
// make the delta atomic with their own writes (the purchase path pairs the
// debit with the number insert this way).
func (s *LedgerService) ApplyIn(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, kind domain.TransactionKind, description string) (*domain.Transaction, error) {
	user, err := s.users.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, identityrepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user for balance change: %w", err)
	}

	newBalance := user.Balance.Add(amount)
	if newBalance.IsNegative() {
		s.logger.WarnContext(ctx, "Rejecting debit that would overdraw balance",
			"user_id", userID, "balance", user.Balance.String(), "amount", amount.String())
		return nil, ErrInsufficientFunds
	}

	if err := s.users.UpdateBalance(ctx, tx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	created, err := s.transactions.Create(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	s.logger.InfoContext(ctx, "Ledger entry applied",
		"user_id", userID, "kind", string(kind), "amount", amount.String(), "new_balance", newBalance.String())
	return created, nil
}

// Deposit credits the wallet and returns the user with the updated balance.
func (s *LedgerService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*identitydomain.User, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if _, err := s.Apply(ctx, userID, amount, domain.TransactionKindDeposit, "Wallet deposit"); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Reconcile recomputes the signed sum of the user's entries and compares it
// to the stored balance, under the same row lock the write path uses.
func (s *LedgerService) Reconcile(ctx context.Context, userID string) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		user, err := s.users.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		sum, err := s.transactions.SumByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !sum.Equal(user.Balance) {
			return fmt.Errorf("ledger mismatch for user %s: balance %s, transaction sum %s",
				userID, user.Balance.String(), sum.String())
		}
		return nil
	})
}
