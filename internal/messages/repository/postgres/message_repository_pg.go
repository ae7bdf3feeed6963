package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/virtnum/gateway/internal/messages/domain"
	"github.com/virtnum/gateway/internal/messages/repository"
)

type pgMessageRepository struct {
	db *pgxpool.Pool
}

func NewPgMessageRepository(db *pgxpool.Pool) repository.MessageRepository {
	return &pgMessageRepository{db: db}
}

func (r *pgMessageRepository) Create(ctx context.Context, msg *domain.SmsMessage) (*domain.SmsMessage, error) {
	msg.ID = uuid.NewString()
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO messages (id, number_id, sender, content, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.NumberID, msg.Sender, msg.Content, msg.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *pgMessageRepository) ListByNumber(ctx context.Context, numberID string) ([]domain.SmsMessage, error) {
	query := `
		SELECT id, number_id, sender, content, received_at
		FROM messages
		WHERE number_id = $1
		ORDER BY received_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, numberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.SmsMessage
	for rows.Next() {
		var msg domain.SmsMessage
		if err := rows.Scan(&msg.ID, &msg.NumberID, &msg.Sender, &msg.Content, &msg.ReceivedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
