package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/virtnum/gateway/internal/platform/messagebroker"
)

// InboundSMSEvent is the payload the provider pushes when an SMS arrives for
// a rented number. Delivery is keyed by the provider's order ID.
type InboundSMSEvent struct {
	ProviderOrderID string    `json:"provider_order_id"`
	Sender          string    `json:"sender"`
	Content         string    `json:"content"`
	ReceivedAt      time.Time `json:"received_at"`
}

// InboundConsumer subscribes to the provider's inbound-SMS subject and stores
// each message against the matching number. Messages are independent and
// append-only, so handlers run without coordination.
type InboundConsumer struct {
	natsClient *messagebroker.NATSClient
	messages   *MessageService
	logger     *slog.Logger
}

func NewInboundConsumer(natsClient *messagebroker.NATSClient, messages *MessageService, logger *slog.Logger) *InboundConsumer {
	return &InboundConsumer{
		natsClient: natsClient,
		messages:   messages,
		logger:     logger.With("service", "inbound_consumer"),
	}
}

// Start subscribes on subject (e.g. "sms.inbound.*") within queueGroup and
// returns once the subscription is established. The subscription drains when
// ctx is cancelled.
func (c *InboundConsumer) Start(ctx context.Context, subject, queueGroup string) error {
	handler := func(msg *nats.Msg) {
		inboundMessagesTotal.WithLabelValues("received").Inc()

		var event InboundSMSEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			inboundMessagesTotal.WithLabelValues("malformed").Inc()
			c.logger.ErrorContext(ctx, "Failed to deserialize inbound SMS event",
				"error", err, "subject", msg.Subject, "data_len", len(msg.Data))
			return
		}
		if event.ProviderOrderID == "" {
			inboundMessagesTotal.WithLabelValues("malformed").Inc()
			c.logger.ErrorContext(ctx, "Inbound SMS event missing provider_order_id", "subject", msg.Subject)
			return
		}
		if event.ReceivedAt.IsZero() {
			event.ReceivedAt = time.Now().UTC()
		}

		_, err := c.messages.AppendByProviderOrder(ctx, event.ProviderOrderID, event.Sender, event.Content, event.ReceivedAt)
		if err != nil {
			if errors.Is(err, ErrNumberNotFound) {
				// No number for that order; nothing to attach the SMS to.
				inboundMessagesTotal.WithLabelValues("unknown_order").Inc()
				c.logger.WarnContext(ctx, "Dropping inbound SMS for unknown provider order",
					"provider_order_id", event.ProviderOrderID, "sender", event.Sender)
				return
			}
			inboundMessagesTotal.WithLabelValues("error").Inc()
			c.logger.ErrorContext(ctx, "Failed to store inbound SMS",
				"error", err, "provider_order_id", event.ProviderOrderID)
			return
		}
		inboundMessagesTotal.WithLabelValues("stored").Inc()
	}

	if _, err := c.natsClient.SubscribeWithQueue(ctx, subject, queueGroup, handler); err != nil {
		return err
	}
	c.logger.Info("Inbound SMS consumer subscribed", "subject", subject, "queue_group", queueGroup)
	return nil
}
