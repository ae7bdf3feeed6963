package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/virtnum/gateway/internal/ledger/domain"
	"github.com/virtnum/gateway/internal/ledger/repository"
	"github.com/virtnum/gateway/internal/platform/database"
)

type pgTransactionRepository struct {
	db *pgxpool.Pool
}

func NewPgTransactionRepository(db *pgxpool.Pool) repository.TransactionRepository {
	return &pgTransactionRepository{db: db}
}

func (r *pgTransactionRepository) Create(ctx context.Context, q database.Querier, txn *domain.Transaction) (*domain.Transaction, error) {
	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO transactions (id, user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Amount, string(txn.Kind), txn.Description, txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *pgTransactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var kind string
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Amount, &kind, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txn.Kind = domain.TransactionKind(kind)
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (r *pgTransactionRepository) SumByUser(ctx context.Context, q database.Querier, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1`, userID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
