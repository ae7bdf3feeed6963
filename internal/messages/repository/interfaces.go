package repository

import (
	"context"

	"github.com/virtnum/gateway/internal/messages/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.SmsMessage) (*domain.SmsMessage, error)

	// ListByNumber returns a number's messages, newest first.
	ListByNumber(ctx context.Context, numberID string) ([]domain.SmsMessage, error)
}
