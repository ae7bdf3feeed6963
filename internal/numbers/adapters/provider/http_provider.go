package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPProvider talks to a 247otp-style HTTP API. All calls go through one
// endpoint with an "action" query parameter.
type HTTPProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

func NewHTTPProvider(logger *slog.Logger, apiURL, apiKey string, httpClient *http.Client) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{
		logger:     logger.With("provider", "http"),
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
	}
}

func (p *HTTPProvider) Name() string {
	return "http"
}

type catalogEntryResponse struct {
	Service string          `json:"service"`
	Country string          `json:"country"`
	Cost    decimal.Decimal `json:"cost"`
	Count   int             `json:"count"`
}

type orderResponse struct {
	PhoneNumber string `json:"phoneNumber"`
	OrderID     string `json:"orderId"`
	Error       string `json:"error,omitempty"`
}

func (p *HTTPProvider) ListCatalog(ctx context.Context) ([]Offer, error) {
	var entries []catalogEntryResponse
	if err := p.get(ctx, url.Values{"action": {"getServices"}}, &entries); err != nil {
		return nil, err
	}

	offers := make([]Offer, 0, len(entries))
	for _, e := range entries {
		offers = append(offers, Offer{
			Service: e.Service,
			Country: e.Country,
			Cost:    e.Cost,
			Count:   e.Count,
		})
	}
	return offers, nil
}

func (p *HTTPProvider) Order(ctx context.Context, service, country string) (*PlacedOrder, error) {
	var resp orderResponse
	params := url.Values{
		"action":  {"getNumber"},
		"service": {service},
		"country": {country},
	}
	if err := p.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" || resp.PhoneNumber == "" || resp.OrderID == "" {
		p.logger.WarnContext(ctx, "Provider rejected number order",
			"service", service, "country", country, "provider_error", resp.Error)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Error)
	}

	return &PlacedOrder{PhoneNumber: resp.PhoneNumber, OrderID: resp.OrderID}, nil
}

func (p *HTTPProvider) get(ctx context.Context, params url.Values, out any) error {
	if p.apiKey != "" {
		params.Set("apikey", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.ErrorContext(ctx, "Provider request failed", "error", err, "action", params.Get("action"))
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.ErrorContext(ctx, "Provider returned non-200", "status", resp.StatusCode, "action", params.Get("action"))
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %s", ErrUnavailable, err.Error())
	}
	return nil
}
