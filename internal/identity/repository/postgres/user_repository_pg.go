package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/virtnum/gateway/internal/identity/domain"
	"github.com/virtnum/gateway/internal/identity/repository"
	"github.com/virtnum/gateway/internal/platform/database"
)

type pgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO users (id, username, hashed_password, balance, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.HashedPassword, user.Balance, user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT id, username, hashed_password, balance, is_admin, created_at FROM users WHERE id = $1`, id))
}

func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT id, username, hashed_password, balance, is_admin, created_at FROM users WHERE username = $1`, username))
}

func (r *pgUserRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id string) (*domain.User, error) {
	return scanUser(q.QueryRow(ctx,
		`SELECT id, username, hashed_password, balance, is_admin, created_at FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *pgUserRepository) UpdateBalance(ctx context.Context, q database.Querier, id string, newBalance decimal.Decimal) error {
	tag, err := q.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, newBalance, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Username, &user.HashedPassword, &user.Balance, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
