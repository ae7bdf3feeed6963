package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	messagesapp "github.com/virtnum/gateway/internal/messages/app"
	messagesdomain "github.com/virtnum/gateway/internal/messages/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

// MessageService is the slice of the message store the messages handler
// needs.
type MessageService interface {
	List(ctx context.Context, userID, numberID string) ([]messagesdomain.SmsMessage, error)
}

type MessagesHandler struct {
	messages MessageService
	logger   *slog.Logger
}

func NewMessagesHandler(messages MessageService, logger *slog.Logger) *MessagesHandler {
	return &MessagesHandler{
		messages: messages,
		logger:   logger.With("handler", "messages"),
	}
}

func (h *MessagesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/numbers/{numberID}/messages", h.handleList)
}

func (h *MessagesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	numberID := chi.URLParam(r, "numberID")
	msgs, err := h.messages.List(r.Context(), authUser.ID, numberID)
	if err != nil {
		if errors.Is(err, messagesapp.ErrNumberNotFound) {
			jsonError(w, "Number not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to list messages", "error", err, "user_id", authUser.ID, "number_id", numberID)
		jsonError(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}

	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, newMessageResponse(&msgs[i]))
	}
	respondJSON(w, http.StatusOK, out)
}
