package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/virtnum/gateway/internal/messages/domain"
	"github.com/virtnum/gateway/internal/messages/repository"
	numbersrepo "github.com/virtnum/gateway/internal/numbers/repository"
)

var ErrNumberNotFound = errors.New("virtual number not found")

// MessageService stores inbound SMS and serves them to the owning user.
// Appends do not check number status: a message that arrives after
// cancellation or expiry is stored anyway, and history stays listable.
type MessageService struct {
	messages repository.MessageRepository
	numbers  numbersrepo.NumberRepository
	logger   *slog.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	numbers numbersrepo.NumberRepository,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		numbers:  numbers,
		logger:   logger.With("service", "messages"),
	}
}

// Append stores an inbound message for the number.
func (s *MessageService) Append(ctx context.Context, numberID, sender, content string) (*domain.SmsMessage, error) {
	if _, err := s.numbers.GetByID(ctx, numberID); err != nil {
		if errors.Is(err, numbersrepo.ErrNumberNotFound) {
			return nil, ErrNumberNotFound
		}
		return nil, err
	}

	msg, err := s.messages.Create(ctx, &domain.SmsMessage{
		NumberID: numberID,
		Sender:   sender,
		Content:  content,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store inbound message", "error", err, "number_id", numberID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Inbound message stored", "number_id", numberID, "sender", sender)
	return msg, nil
}

// AppendByProviderOrder resolves the number by the provider's order ID and
// stores the message. Used by the inbound consumer.
func (s *MessageService) AppendByProviderOrder(ctx context.Context, providerOrderID, sender, content string, receivedAt time.Time) (*domain.SmsMessage, error) {
	number, err := s.numbers.GetByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, numbersrepo.ErrNumberNotFound) {
			return nil, ErrNumberNotFound
		}
		return nil, err
	}

	return s.messages.Create(ctx, &domain.SmsMessage{
		NumberID:   number.ID,
		Sender:     sender,
		Content:    content,
		ReceivedAt: receivedAt,
	})
}

// List returns a number's messages, newest first. Missing and non-owned
// numbers both yield ErrNumberNotFound.
func (s *MessageService) List(ctx context.Context, userID, numberID string) ([]domain.SmsMessage, error) {
	number, err := s.numbers.GetByID(ctx, numberID)
	if err != nil {
		if errors.Is(err, numbersrepo.ErrNumberNotFound) {
			return nil, ErrNumberNotFound
		}
		return nil, err
	}
	if number.UserID != userID {
		return nil, ErrNumberNotFound
	}

	return s.messages.ListByNumber(ctx, numberID)
}
