package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/virtnum/gateway/internal/ledger/app"
	"github.com/virtnum/gateway/internal/numbers/adapters/provider"
	numbersapp "github.com/virtnum/gateway/internal/numbers/app"
	numbersdomain "github.com/virtnum/gateway/internal/numbers/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

type mockNumberService struct {
	listAvailableFn func(ctx context.Context) ([]provider.Offer, error)
	purchaseFn      func(ctx context.Context, userID, service, country string) (*numbersdomain.VirtualNumber, error)
	cancelFn        func(ctx context.Context, userID, numberID string) error
	getFn           func(ctx context.Context, userID, numberID string) (*numbersdomain.VirtualNumber, error)
	listByUserFn    func(ctx context.Context, userID string) ([]numbersdomain.VirtualNumber, error)
}

func (m *mockNumberService) ListAvailable(ctx context.Context) ([]provider.Offer, error) {
	return m.listAvailableFn(ctx)
}

func (m *mockNumberService) Purchase(ctx context.Context, userID, service, country string) (*numbersdomain.VirtualNumber, error) {
	return m.purchaseFn(ctx, userID, service, country)
}

func (m *mockNumberService) Cancel(ctx context.Context, userID, numberID string) error {
	return m.cancelFn(ctx, userID, numberID)
}

func (m *mockNumberService) Get(ctx context.Context, userID, numberID string) (*numbersdomain.VirtualNumber, error) {
	return m.getFn(ctx, userID, numberID)
}

func (m *mockNumberService) ListByUser(ctx context.Context, userID string) ([]numbersdomain.VirtualNumber, error) {
	return m.listByUserFn(ctx, userID)
}

func newNumbersTestRouter(service *mockNumberService) chi.Router {
	r := chi.NewRouter()
	NewNumbersHandler(service, testLogger()).RegisterRoutes(r)
	return r
}

func numbersCaller() middleware.AuthenticatedUser {
	return middleware.AuthenticatedUser{ID: "u1", Username: "alice", SessionID: "sess-1"}
}

func sampleNumber() *numbersdomain.VirtualNumber {
	expires := time.Now().UTC().Add(20 * time.Minute)
	return &numbersdomain.VirtualNumber{
		ID:              "n1",
		UserID:          "u1",
		PhoneNumber:     "+2348012345678",
		Service:         "telegram",
		Country:         "Nigeria",
		Cost:            decimal.RequireFromString("100.00"),
		Status:          numbersdomain.StatusActive,
		ExpiresAt:       &expires,
		ProviderOrderID: "ord_abc123",
		CreatedAt:       time.Now().UTC(),
	}
}

func TestAvailableHandler(t *testing.T) {
	t.Run("returns catalog", func(t *testing.T) {
		r := newNumbersTestRouter(&mockNumberService{
			listAvailableFn: func(context.Context) ([]provider.Offer, error) {
				return []provider.Offer{
					{Service: "telegram", Country: "Nigeria", Cost: decimal.RequireFromString("100"), Count: 120},
				}, nil
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/available", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body []OfferResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "telegram", body[0].Service)
		assert.Equal(t, "100.00", body[0].Cost)
		assert.Equal(t, 120, body[0].Count)
	})

	t.Run("provider outage", func(t *testing.T) {
		r := newNumbersTestRouter(&mockNumberService{
			listAvailableFn: func(context.Context) ([]provider.Offer, error) {
				return nil, provider.ErrUnavailable
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/available", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestBuyHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		purchaseFn func(ctx context.Context, userID, service, country string) (*numbersdomain.VirtualNumber, error)
		wantStatus int
		wantError  string
	}{
		{
			name: "successful purchase",
			body: `{"service":"telegram","country":"Nigeria"}`,
			purchaseFn: func(_ context.Context, userID, service, country string) (*numbersdomain.VirtualNumber, error) {
				return sampleNumber(), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "insufficient funds",
			body: `{"service":"whatsapp","country":"Nigeria"}`,
			purchaseFn: func(context.Context, string, string, string) (*numbersdomain.VirtualNumber, error) {
				return nil, ledgerapp.ErrInsufficientFunds
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Insufficient funds",
		},
		{
			name: "unknown offer",
			body: `{"service":"telegram","country":"Atlantis"}`,
			purchaseFn: func(context.Context, string, string, string) (*numbersdomain.VirtualNumber, error) {
				return nil, numbersapp.ErrUnknownOffer
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider unavailable",
			body: `{"service":"telegram","country":"Nigeria"}`,
			purchaseFn: func(context.Context, string, string, string) (*numbersdomain.VirtualNumber, error) {
				return nil, provider.ErrUnavailable
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{"service":"","country":""}`,
			purchaseFn: nil,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newNumbersTestRouter(&mockNumberService{purchaseFn: tc.purchaseFn})

			req := authedRequest(httptest.NewRequest(http.MethodPost, "/numbers/buy",
				strings.NewReader(tc.body)), numbersCaller())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)

			if tc.wantStatus == http.StatusCreated {
				var body NumberResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "n1", body.ID)
				assert.Equal(t, "active", body.Status)
				assert.Equal(t, "100.00", body.Cost)
				assert.Equal(t, "ord_abc123", body.OrderID)
				assert.NotNil(t, body.ExpiresAt)
			} else if tc.wantError != "" {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.wantError, body.Message)
			}
		})
	}
}

func TestCancelHandler(t *testing.T) {
	t.Run("successful cancel", func(t *testing.T) {
		var gotNumberID string
		r := newNumbersTestRouter(&mockNumberService{
			cancelFn: func(_ context.Context, userID, numberID string) error {
				require.Equal(t, "u1", userID)
				gotNumberID = numberID
				return nil
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodPost, "/numbers/n1/cancel", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "n1", gotNumberID)
	})

	t.Run("unknown number", func(t *testing.T) {
		r := newNumbersTestRouter(&mockNumberService{
			cancelFn: func(context.Context, string, string) error {
				return numbersapp.ErrNumberNotFound
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodPost, "/numbers/missing/cancel", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetNumberHandler(t *testing.T) {
	t.Run("owned number", func(t *testing.T) {
		r := newNumbersTestRouter(&mockNumberService{
			getFn: func(_ context.Context, userID, numberID string) (*numbersdomain.VirtualNumber, error) {
				require.Equal(t, "u1", userID)
				require.Equal(t, "n1", numberID)
				return sampleNumber(), nil
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/n1", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body NumberResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "n1", body.ID)
	})

	t.Run("not owned", func(t *testing.T) {
		r := newNumbersTestRouter(&mockNumberService{
			getFn: func(context.Context, string, string) (*numbersdomain.VirtualNumber, error) {
				return nil, numbersapp.ErrNumberNotFound
			},
		})

		req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers/other", nil), numbersCaller())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListNumbersHandler(t *testing.T) {
	r := newNumbersTestRouter(&mockNumberService{
		listByUserFn: func(_ context.Context, userID string) ([]numbersdomain.VirtualNumber, error) {
			require.Equal(t, "u1", userID)
			return []numbersdomain.VirtualNumber{*sampleNumber()}, nil
		},
	})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/numbers", nil), numbersCaller())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body []NumberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "+2348012345678", body[0].PhoneNumber)
}
