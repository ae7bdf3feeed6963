package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
	ledgerapp "github.com/virtnum/gateway/internal/ledger/app"
	ledgerdomain "github.com/virtnum/gateway/internal/ledger/domain"
	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

// WalletService is the slice of the ledger service the wallet handler needs.
type WalletService interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string) ([]ledgerdomain.Transaction, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*identitydomain.User, error)
}

type WalletHandler struct {
	wallet WalletService
	logger *slog.Logger
}

func NewWalletHandler(wallet WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		wallet: wallet,
		logger: logger.With("handler", "wallet"),
	}
}

func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallet/balance", h.handleBalance)
	r.Get("/wallet/transactions", h.handleTransactions)
	r.Post("/wallet/deposit", h.handleDeposit)
}

func (h *WalletHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	balance, err := h.wallet.GetBalance(r.Context(), authUser.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to read balance", "error", err, "user_id", authUser.ID)
		jsonError(w, "Failed to read balance", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{Balance: balance.StringFixed(2)})
}

func (h *WalletHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	txns, err := h.wallet.ListTransactions(r.Context(), authUser.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list transactions", "error", err, "user_id", authUser.ID)
		jsonError(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, newTransactionResponse(&txns[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *WalletHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.wallet.Deposit(r.Context(), authUser.ID, req.Amount)
	if err != nil {
		if errors.Is(err, ledgerapp.ErrInvalidAmount) {
			jsonError(w, "Amount must be a positive decimal", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(r.Context(), "Deposit failed", "error", err, "user_id", authUser.ID)
		jsonError(w, "Deposit failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user))
}
