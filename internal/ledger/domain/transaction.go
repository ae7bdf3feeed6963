package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "deposit"
	TransactionKindPurchase TransactionKind = "purchase"
	TransactionKindRefund   TransactionKind = "refund"
)

// Transaction is an immutable, append-only ledger entry. Amount is signed:
// positive credits the user, negative debits. The signed sum of a user's
// transactions always equals that user's balance.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        TransactionKind `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
