package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/virtnum/gateway/internal/numbers/domain"
	"github.com/virtnum/gateway/internal/numbers/repository"
	"github.com/virtnum/gateway/internal/platform/database"
)

type pgNumberRepository struct {
	db *pgxpool.Pool
}

func NewPgNumberRepository(db *pgxpool.Pool) repository.NumberRepository {
	return &pgNumberRepository{db: db}
}

const numberColumns = `id, user_id, phone_number, service, country, cost, status, expires_at, provider_order_id, created_at`

func (r *pgNumberRepository) CreateIn(ctx context.Context, q database.Querier, number *domain.VirtualNumber) (*domain.VirtualNumber, error) {
	number.ID = uuid.NewString()
	number.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO numbers (id, user_id, phone_number, service, country, cost, status, expires_at, provider_order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		number.ID, number.UserID, number.PhoneNumber, number.Service, number.Country,
		number.Cost, string(number.Status), number.ExpiresAt, number.ProviderOrderID, number.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return number, nil
}

func (r *pgNumberRepository) GetByID(ctx context.Context, id string) (*domain.VirtualNumber, error) {
	return scanNumber(r.db.QueryRow(ctx,
		`SELECT `+numberColumns+` FROM numbers WHERE id = $1`, id))
}

func (r *pgNumberRepository) GetByProviderOrderID(ctx context.Context, orderID string) (*domain.VirtualNumber, error) {
	return scanNumber(r.db.QueryRow(ctx,
		`SELECT `+numberColumns+` FROM numbers WHERE provider_order_id = $1`, orderID))
}

func (r *pgNumberRepository) ListByUser(ctx context.Context, userID string) ([]domain.VirtualNumber, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+numberColumns+` FROM numbers WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []domain.VirtualNumber
	for rows.Next() {
		n, err := scanNumberFromRows(rows)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, *n)
	}
	return numbers, rows.Err()
}

func (r *pgNumberRepository) UpdateStatus(ctx context.Context, q database.Querier, id string, from, to domain.Status) error {
	tag, err := q.Exec(ctx,
		`UPDATE numbers SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStatusConflict
	}
	return nil
}

func (r *pgNumberRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE numbers SET status = $1 WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3`,
		string(domain.StatusExpired), string(domain.StatusActive), now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNumber(row pgx.Row) (*domain.VirtualNumber, error) {
	n := &domain.VirtualNumber{}
	var status string
	err := row.Scan(&n.ID, &n.UserID, &n.PhoneNumber, &n.Service, &n.Country,
		&n.Cost, &status, &n.ExpiresAt, &n.ProviderOrderID, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNumberNotFound
		}
		return nil, err
	}
	n.Status = domain.Status(status)
	return n, nil
}

func scanNumberFromRows(rows pgx.Rows) (*domain.VirtualNumber, error) {
	n := &domain.VirtualNumber{}
	var status string
	err := rows.Scan(&n.ID, &n.UserID, &n.PhoneNumber, &n.Service, &n.Country,
		&n.Cost, &status, &n.ExpiresAt, &n.ProviderOrderID, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Status = domain.Status(status)
	return n, nil
}
