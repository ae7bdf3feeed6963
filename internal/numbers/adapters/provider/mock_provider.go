package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockProvider is a simulated provider for development and tests. Its catalog
// is fixed and its phone numbers are random.
type MockProvider struct {
	logger       *slog.Logger
	name         string
	failRate     float64 // chance to simulate ErrUnavailable (0.0 to 1.0)
	minLatencyMs int
	maxLatencyMs int
}

func NewMockProvider(logger *slog.Logger, failRate float64, minLatencyMs, maxLatencyMs int) Client {
	return &MockProvider{
		logger:       logger.With("provider", "mock"),
		name:         "mock",
		failRate:     failRate,
		minLatencyMs: minLatencyMs,
		maxLatencyMs: maxLatencyMs,
	}
}

func (p *MockProvider) Name() string {
	return p.name
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var mockCatalog = []Offer{
	{Service: "whatsapp", Country: "Nigeria", Cost: mustDecimal("150.00"), Count: 50},
	{Service: "telegram", Country: "Nigeria", Cost: mustDecimal("100.00"), Count: 120},
	{Service: "facebook", Country: "Nigeria", Cost: mustDecimal("80.00"), Count: 200},
	{Service: "whatsapp", Country: "USA", Cost: mustDecimal("500.00"), Count: 10},
	{Service: "openai", Country: "USA", Cost: mustDecimal("250.00"), Count: 25},
}

func (p *MockProvider) ListCatalog(ctx context.Context) ([]Offer, error) {
	p.simulateLatency()
	if rand.Float64() < p.failRate {
		p.logger.WarnContext(ctx, "MockProvider: simulated catalog failure")
		return nil, ErrUnavailable
	}
	catalog := make([]Offer, len(mockCatalog))
	copy(catalog, mockCatalog)
	return catalog, nil
}

func (p *MockProvider) Order(ctx context.Context, service, country string) (*PlacedOrder, error) {
	p.simulateLatency()
	if rand.Float64() < p.failRate {
		p.logger.WarnContext(ctx, "MockProvider: simulated order failure", "service", service, "country", country)
		return nil, ErrUnavailable
	}

	order := &PlacedOrder{
		PhoneNumber: fmt.Sprintf("+%d", 1000000000+rand.Int63n(9000000000)),
		OrderID:     "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
	}
	p.logger.InfoContext(ctx, "MockProvider: number ordered (simulated)",
		"service", service, "country", country, "order_id", order.OrderID)
	return order, nil
}

func (p *MockProvider) simulateLatency() {
	if p.maxLatencyMs <= p.minLatencyMs {
		return
	}
	latency := p.minLatencyMs + rand.Intn(p.maxLatencyMs-p.minLatencyMs+1)
	time.Sleep(time.Duration(latency) * time.Millisecond)
}
