package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messagesapp "github.com/virtnum/gateway/internal/messages/app"
	messagesdomain "github.com/virtnum/gateway/internal/messages/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

type mockMessageService struct {
	listFn func(ctx context.Context, userID, numberID string) ([]messagesdomain.SmsMessage, error)
}

func (m *mockMessageService) List(ctx context.Context, userID, numberID string) ([]messagesdomain.SmsMessage, error) {
	return m.listFn(ctx, userID, numberID)
}

func TestListMessagesHandler(t *testing.T) {
	t.Run("returns messages newest first", func(t *testing.T) {
		now := time.Now().UTC()
		service := &mockMessageService{
			listFn: func(_ context.Context, userID, numberID string) ([]messagesdomain.SmsMessage, error) {
				require.Equal(t, "u1", userID)
				require.Equal(t, "n1", numberID)
				return []messagesdomain.SmsMessage{
					{ID: "m2", NumberID: "n1", Sender: "WhatsApp", Content: "second", ReceivedAt: now},
					{ID: "m1", NumberID: "n1", Sender: "WhatsApp", Content: "first", ReceivedAt: now.Add(-time.Minute)},
				}, nil
			},
		}
		r := chi.NewRouter()
		NewMessagesHandler(service, testLogger()).RegisterRoutes(r)

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/n1/messages", nil),
			middleware.AuthenticatedUser{ID: "u1", Username: "alice", SessionID: "sess-1"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body []MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "second", body[0].Content)
		assert.Equal(t, "first", body[1].Content)
	})

	t.Run("unknown or non-owned number", func(t *testing.T) {
		service := &mockMessageService{
			listFn: func(context.Context, string, string) ([]messagesdomain.SmsMessage, error) {
				return nil, messagesapp.ErrNumberNotFound
			},
		}
		r := chi.NewRouter()
		NewMessagesHandler(service, testLogger()).RegisterRoutes(r)

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/other/messages", nil),
			middleware.AuthenticatedUser{ID: "u1", Username: "alice", SessionID: "sess-1"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
