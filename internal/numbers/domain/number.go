package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a virtual number. Active is the only
// non-terminal state; cancelled and expired are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

var validStatusTransitions = map[Status][]Status{
	StatusActive: {StatusCancelled, StatusExpired},
}

// CanTransitionTo reports whether the transition s -> target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validStatusTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// VirtualNumber is a rented phone number. Created only by a successful
// purchase, atomically with its debit transaction.
type VirtualNumber struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	PhoneNumber     string          `json:"phone_number"`
	Service         string          `json:"service"`
	Country         string          `json:"country"`
	Cost            decimal.Decimal `json:"cost"`
	Status          Status          `json:"status"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	ProviderOrderID string          `json:"order_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ExpiryDue reports whether an active number's lease has run out.
func (n *VirtualNumber) ExpiryDue(now time.Time) bool {
	return n.Status == StatusActive && n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}
