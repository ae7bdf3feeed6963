package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the root entity: transactions and virtual numbers hang off it.
// Balance is only ever mutated through the ledger service; it must never go
// negative.
type User struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	HashedPassword string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	IsAdmin        bool            `json:"is_admin"`
	CreatedAt      time.Time       `json:"created_at"`
}
