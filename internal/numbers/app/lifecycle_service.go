package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/virtnum/gateway/internal/ledger/app"
	ledgerdomain "github.com/virtnum/gateway/internal/ledger/domain"
	"github.com/virtnum/gateway/internal/numbers/adapters/provider"
	"github.com/virtnum/gateway/internal/numbers/domain"
	"github.com/virtnum/gateway/internal/numbers/repository"
	"github.com/virtnum/gateway/internal/platform/database"
)

var ErrUnknownOffer = errors.New("no offer for that service and country")
var ErrNumberNotFound = errors.New("virtual number not found")

// Ledger is the slice of the ledger service the lifecycle manager needs.
type Ledger interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ApplyIn(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, kind ledgerdomain.TransactionKind, description string) (*ledgerdomain.Transaction, error)
}

// LifecycleService owns virtual-number records and their state machine:
// a purchase creates an active number atomically with its debit; the only
// transitions afterwards are user cancellation and lease expiry.
type LifecycleService struct {
	numbers     repository.NumberRepository
	ledger      Ledger
	provider    provider.Client
	db          database.TxBeginner
	pool        database.Querier
	leaseWindow time.Duration
	logger      *slog.Logger
}

func NewLifecycleService(
	numbers repository.NumberRepository,
	ledger Ledger,
	providerClient provider.Client,
	db database.TxBeginner,
	pool database.Querier,
	leaseWindow time.Duration,
	logger *slog.Logger,
) *LifecycleService {
	return &LifecycleService{
		numbers:     numbers,
		ledger:      ledger,
		provider:    providerClient,
		db:          db,
		pool:        pool,
		leaseWindow: leaseWindow,
		logger:      logger.With("service", "numbers"),
	}
}

// ListAvailable returns the provider catalog as-is; there is no local cache.
func (s *LifecycleService) ListAvailable(ctx context.Context) ([]provider.Offer, error) {
	timer := prometheus.NewTimer(providerRequestDurationHist.WithLabelValues("list_catalog"))
	offers, err := s.provider.ListCatalog(ctx)
	timer.ObserveDuration()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch provider catalog", "error", err)
		return nil, err
	}
	return offers, nil
}

// Purchase rents a number for the user. The provider order happens first;
// the debit and the number insert then commit as one database transaction,
// so the ledger can never show a debit without a number or vice versa. The
// balance is re-checked under the user row lock inside that transaction,
// which serializes concurrent purchases for the same user.
func (s *LifecycleService) Purchase(ctx context.Context, userID, service, country string) (*domain.VirtualNumber, error) {
	offer, err := s.resolveOffer(ctx, service, country)
	if err != nil {
		s.countPurchase(err)
		return nil, err
	}

	// Fast-path check so we do not order from the provider for a user who
	// obviously cannot pay. The binding check happens under the row lock.
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		s.countPurchase(err)
		return nil, err
	}
	if balance.LessThan(offer.Cost) {
		s.countPurchase(ledgerapp.ErrInsufficientFunds)
		return nil, ledgerapp.ErrInsufficientFunds
	}

	timer := prometheus.NewTimer(providerRequestDurationHist.WithLabelValues("order"))
	order, err := s.provider.Order(ctx, service, country)
	timer.ObserveDuration()
	if err != nil {
		s.logger.WarnContext(ctx, "Provider order failed, nothing persisted",
			"user_id", userID, "service", service, "country", country, "error", err)
		s.countPurchase(err)
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(s.leaseWindow)
	var created *domain.VirtualNumber
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		description := fmt.Sprintf("Purchased %s number (%s)", service, country)
		if _, err := s.ledger.ApplyIn(ctx, tx, userID, offer.Cost.Neg(), ledgerdomain.TransactionKindPurchase, description); err != nil {
			return err
		}

		number := &domain.VirtualNumber{
			UserID:          userID,
			PhoneNumber:     order.PhoneNumber,
			Service:         service,
			Country:         country,
			Cost:            offer.Cost,
			Status:          domain.StatusActive,
			ExpiresAt:       &expiresAt,
			ProviderOrderID: order.OrderID,
		}
		var txErr error
		created, txErr = s.numbers.CreateIn(ctx, tx, number)
		return txErr
	})
	if err != nil {
		s.countPurchase(err)
		return nil, err
	}

	s.countPurchase(nil)
	s.logger.InfoContext(ctx, "Number purchased",
		"user_id", userID, "number_id", created.ID, "service", service, "country", country,
		"cost", offer.Cost.String(), "order_id", created.ProviderOrderID)
	return created, nil
}

// Cancel transitions an owned active number to cancelled. Cancelling a number
// that is already terminal is a no-op (idempotent). Missing and non-owned
// numbers are both ErrNumberNotFound so callers cannot probe for existence.
// Cancellation does not refund.
func (s *LifecycleService) Cancel(ctx context.Context, userID, numberID string) error {
	number, err := s.getOwned(ctx, userID, numberID)
	if err != nil {
		return err
	}
	if number.Status.Terminal() {
		return nil
	}
	if !number.Status.CanTransitionTo(domain.StatusCancelled) {
		return fmt.Errorf("cannot cancel number in status %s", number.Status)
	}

	err = s.numbers.UpdateStatus(ctx, s.pool, numberID, number.Status, domain.StatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// A concurrent cancel or the sweeper got there first; the number
			// is terminal either way, which is what the caller asked for.
			return nil
		}
		return err
	}

	s.logger.InfoContext(ctx, "Number cancelled", "user_id", userID, "number_id", numberID)
	return nil
}

// Get returns an owned number. Reads never report a past-expiry number as
// active: the status is normalized before returning.
func (s *LifecycleService) Get(ctx context.Context, userID, numberID string) (*domain.VirtualNumber, error) {
	number, err := s.getOwned(ctx, userID, numberID)
	if err != nil {
		return nil, err
	}
	s.normalizeExpiry(ctx, number)
	return number, nil
}

// ListByUser returns the user's numbers, newest first, expiry-normalized.
func (s *LifecycleService) ListByUser(ctx context.Context, userID string) ([]domain.VirtualNumber, error) {
	numbers, err := s.numbers.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range numbers {
		s.normalizeExpiry(ctx, &numbers[i])
	}
	return numbers, nil
}

// ExpireDue flips every overdue active number to expired. Called by the
// background sweeper.
func (s *LifecycleService) ExpireDue(ctx context.Context) (int64, error) {
	count, err := s.numbers.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		numbersExpiredTotal.Add(float64(count))
		s.logger.InfoContext(ctx, "Expired overdue numbers", "count", count)
	}
	return count, nil
}

func (s *LifecycleService) resolveOffer(ctx context.Context, service, country string) (*provider.Offer, error) {
	offers, err := s.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	for i := range offers {
		if strings.EqualFold(offers[i].Service, service) && strings.EqualFold(offers[i].Country, country) {
			return &offers[i], nil
		}
	}
	return nil, ErrUnknownOffer
}

func (s *LifecycleService) getOwned(ctx context.Context, userID, numberID string) (*domain.VirtualNumber, error) {
	number, err := s.numbers.GetByID(ctx, numberID)
	if err != nil {
		if errors.Is(err, repository.ErrNumberNotFound) {
			return nil, ErrNumberNotFound
		}
		return nil, err
	}
	if number.UserID != userID {
		return nil, ErrNumberNotFound
	}
	return number, nil
}

// normalizeExpiry makes sure an overdue number is reported (and best-effort
// persisted) as expired even if the sweeper has not run yet.
func (s *LifecycleService) normalizeExpiry(ctx context.Context, number *domain.VirtualNumber) {
	if !number.ExpiryDue(time.Now().UTC()) {
		return
	}
	number.Status = domain.StatusExpired
	if err := s.numbers.UpdateStatus(ctx, s.pool, number.ID, domain.StatusActive, domain.StatusExpired); err != nil &&
		!errors.Is(err, repository.ErrStatusConflict) {
		s.logger.WarnContext(ctx, "Failed to persist expiry on read", "number_id", number.ID, "error", err)
	}
}

func (s *LifecycleService) countPurchase(err error) {
	switch {
	case err == nil:
		purchasesTotal.WithLabelValues("success").Inc()
	case errors.Is(err, ledgerapp.ErrInsufficientFunds):
		purchasesTotal.WithLabelValues("insufficient_funds").Inc()
	case errors.Is(err, ErrUnknownOffer):
		purchasesTotal.WithLabelValues("unknown_offer").Inc()
	case errors.Is(err, provider.ErrUnavailable):
		purchasesTotal.WithLabelValues("provider_unavailable").Inc()
	default:
		purchasesTotal.WithLabelValues("error").Inc()
	}
}
