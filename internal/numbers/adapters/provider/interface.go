package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable means the upstream number-provisioning service failed or
// timed out. Callers must not persist any state on this error.
var ErrUnavailable = errors.New("sms provider unavailable")

// Offer is a (service, country) pair published by the provider's catalog.
type Offer struct {
	Service string          `json:"service"`
	Country string          `json:"country"`
	Cost    decimal.Decimal `json:"cost"`
	Count   int             `json:"count"`
}

// PlacedOrder is the provider's response to a number order.
type PlacedOrder struct {
	PhoneNumber string
	OrderID     string
}

// Client abstracts the external SMS/number-provisioning service so the
// lifecycle manager never touches wire details. Variants: mock (development,
// tests) and http (production).
type Client interface {
	ListCatalog(ctx context.Context) ([]Offer, error)
	Order(ctx context.Context, service, country string) (*PlacedOrder, error)
	Name() string
}
