package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	ledgerapp "github.com/virtnum/gateway/internal/ledger/app"
	"github.com/virtnum/gateway/internal/numbers/adapters/provider"
	numbersapp "github.com/virtnum/gateway/internal/numbers/app"
	numbersdomain "github.com/virtnum/gateway/internal/numbers/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

// NumberService is the slice of the lifecycle service the numbers handler
// needs.
type NumberService interface {
	ListAvailable(ctx context.Context) ([]provider.Offer, error)
	Purchase(ctx context.Context, userID, service, country string) (*numbersdomain.VirtualNumber, error)
	Cancel(ctx context.Context, userID, numberID string) error
	Get(ctx context.Context, userID, numberID string) (*numbersdomain.VirtualNumber, error)
	ListByUser(ctx context.Context, userID string) ([]numbersdomain.VirtualNumber, error)
}

type NumbersHandler struct {
	numbers NumberService
	logger  *slog.Logger
}

func NewNumbersHandler(numbers NumberService, logger *slog.Logger) *NumbersHandler {
	return &NumbersHandler{
		numbers: numbers,
		logger:  logger.With("handler", "numbers"),
	}
}

func (h *NumbersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/numbers", h.handleList)
	r.Get("/numbers/available", h.handleAvailable)
	r.Post("/numbers/buy", h.handleBuy)
	r.Get("/numbers/{numberID}", h.handleGet)
	r.Post("/numbers/{numberID}/cancel", h.handleCancel)
}

func (h *NumbersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	numbers, err := h.numbers.ListByUser(r.Context(), authUser.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list numbers", "error", err, "user_id", authUser.ID)
		jsonError(w, "Failed to list numbers", http.StatusInternalServerError)
		return
	}

	out := make([]NumberResponse, 0, len(numbers))
	for i := range numbers {
		out = append(out, newNumberResponse(&numbers[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *NumbersHandler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	offers, err := h.numbers.ListAvailable(r.Context())
	if err != nil {
		if errors.Is(err, provider.ErrUnavailable) {
			jsonError(w, "Provider unavailable", http.StatusBadGateway)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to fetch available offers", "error", err)
		jsonError(w, "Failed to fetch available offers", http.StatusInternalServerError)
		return
	}

	out := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		out = append(out, newOfferResponse(&offers[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *NumbersHandler) handleBuy(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req BuyNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Service) == "" || strings.TrimSpace(req.Country) == "" {
		jsonError(w, "Service and country are required", http.StatusBadRequest)
		return
	}

	number, err := h.numbers.Purchase(r.Context(), authUser.ID, req.Service, req.Country)
	if err != nil {
		switch {
		case errors.Is(err, ledgerapp.ErrInsufficientFunds):
			jsonError(w, "Insufficient funds", http.StatusBadRequest)
		case errors.Is(err, numbersapp.ErrUnknownOffer):
			jsonError(w, "No offer for that service and country", http.StatusBadRequest)
		case errors.Is(err, provider.ErrUnavailable):
			jsonError(w, "Provider unavailable, please try again", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "Purchase failed", "error", err, "user_id", authUser.ID)
			jsonError(w, "Purchase failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, newNumberResponse(number))
}

func (h *NumbersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	numberID := chi.URLParam(r, "numberID")
	number, err := h.numbers.Get(r.Context(), authUser.ID, numberID)
	if err != nil {
		if errors.Is(err, numbersapp.ErrNumberNotFound) {
			jsonError(w, "Number not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to load number", "error", err, "user_id", authUser.ID, "number_id", numberID)
		jsonError(w, "Failed to load number", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, newNumberResponse(number))
}

func (h *NumbersHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	numberID := chi.URLParam(r, "numberID")
	if err := h.numbers.Cancel(r.Context(), authUser.ID, numberID); err != nil {
		if errors.Is(err, numbersapp.ErrNumberNotFound) {
			jsonError(w, "Number not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Cancel failed", "error", err, "user_id", authUser.ID, "number_id", numberID)
		jsonError(w, "Cancel failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Number cancelled"})
}
