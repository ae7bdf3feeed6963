package http

import (
	"time"

	"github.com/shopspring/decimal"

	identitydomain "github.com/virtnum/gateway/internal/identity/domain"
	ledgerdomain "github.com/virtnum/gateway/internal/ledger/domain"
	messagesdomain "github.com/virtnum/gateway/internal/messages/domain"
	"github.com/virtnum/gateway/internal/numbers/adapters/provider"
	numbersdomain "github.com/virtnum/gateway/internal/numbers/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DepositRequest accepts the amount as a decimal string ("25.00"); bare JSON
// numbers also parse, but clients should send strings to avoid float drift.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type BuyNumberRequest struct {
	Service string `json:"service"`
	Country string `json:"country"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// Monetary fields serialize as fixed two-decimal strings, never floats.

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Balance   string    `json:"balance"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type OfferResponse struct {
	Service string `json:"service"`
	Country string `json:"country"`
	Cost    string `json:"cost"`
	Count   int    `json:"count"`
}

type NumberResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	PhoneNumber string     `json:"phone_number"`
	Service     string     `json:"service"`
	Country     string     `json:"country"`
	Cost        string     `json:"cost"`
	Status      string     `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	OrderID     string     `json:"order_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type MessageResponse struct {
	ID         string    `json:"id"`
	NumberID   string    `json:"number_id"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	ReceivedAt time.Time `json:"received_at"`
}

func newUserResponse(u *identitydomain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Balance:   u.Balance.StringFixed(2),
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func newTransactionResponse(t *ledgerdomain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.StringFixed(2),
		Type:        string(t.Kind),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func newOfferResponse(o *provider.Offer) OfferResponse {
	return OfferResponse{
		Service: o.Service,
		Country: o.Country,
		Cost:    o.Cost.StringFixed(2),
		Count:   o.Count,
	}
}

func newNumberResponse(n *numbersdomain.VirtualNumber) NumberResponse {
	return NumberResponse{
		ID:          n.ID,
		UserID:      n.UserID,
		PhoneNumber: n.PhoneNumber,
		Service:     n.Service,
		Country:     n.Country,
		Cost:        n.Cost.StringFixed(2),
		Status:      string(n.Status),
		ExpiresAt:   n.ExpiresAt,
		OrderID:     n.ProviderOrderID,
		CreatedAt:   n.CreatedAt,
	}
}

func newMessageResponse(m *messagesdomain.SmsMessage) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		NumberID:   m.NumberID,
		Sender:     m.Sender,
		Content:    m.Content,
		ReceivedAt: m.ReceivedAt,
	}
}
