package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/stripe/stripe-go/v84"
)

type EffectiveFrom string

const (
	EffectiveImmediately       EffectiveFrom = "immediately"
	EffectiveNextBillingPeriod EffectiveFrom = "next_billing_period"
)

// CancelResult reports the subscription state after a cancellation request.
// A deferred cancellation keeps the status unchanged and sets the scheduled
// change instead.
type CancelResult struct {
	Status          models.SubscriptionStatus `json:"status"`
	ScheduledChange bool                      `json:"scheduled_change"`
	EffectiveAt     *time.Time                `json:"effective_at,omitempty"`
}

// CancellationService cancels subscriptions on behalf of users. Ownership is
// checked against the subscription re-fetched from the provider, never against
// the local projection, so a stale or tampered mirror cannot authorize a
// cross-tenant cancel.
type CancellationService struct {
	provider ProviderClient
	resolver *CustomerResolver
	store    Store
	log      *slog.Logger
}

func NewCancellationService(provider ProviderClient, resolver *CustomerResolver, store Store, log *slog.Logger) *CancellationService {
	return &CancellationService{
		provider: provider,
		resolver: resolver,
		store:    store,
		log:      log,
	}
}

func (s *CancellationService) CancelSubscription(ctx context.Context, requesterEmail, subscriptionID string, effectiveFrom EffectiveFrom) (*CancelResult, error) {
	customerID, err := s.resolver.GetCustomerID(ctx, requesterEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}
	if customerID == "" {
		s.log.Warn("cancellation attempt without customer mapping",
			"subscription_id", subscriptionID)
		return nil, ErrUnauthorized
	}

	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			// Same answer as an ownership mismatch so callers cannot probe
			// which subscription IDs exist.
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if sub.Customer == nil || sub.Customer.ID != customerID {
		s.log.Warn("cross-tenant cancellation rejected",
			"subscription_id", subscriptionID,
			"customer_id", customerID)
		return nil, ErrUnauthorized
	}

	switch effectiveFrom {
	case EffectiveNextBillingPeriod:
		return s.scheduleCancel(ctx, subscriptionID)
	default:
		return s.cancelNow(ctx, subscriptionID)
	}
}

func (s *CancellationService) cancelNow(ctx context.Context, subscriptionID string) (*CancelResult, error) {
	canceled, err := s.provider.CancelSubscriptionNow(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	projected := projectionFromProvider(canceled, time.Now())
	projected.Status = models.SubscriptionCanceled
	if err := s.store.UpsertSubscription(ctx, projected); err != nil {
		return nil, fmt.Errorf("project canceled subscription %s: %w", subscriptionID, err)
	}

	s.log.Info("subscription canceled",
		"subscription_id", subscriptionID)
	return &CancelResult{Status: models.SubscriptionCanceled}, nil
}

func (s *CancellationService) scheduleCancel(ctx context.Context, subscriptionID string) (*CancelResult, error) {
	updated, err := s.provider.ScheduleCancellation(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	projected := projectionFromProvider(updated, time.Now())
	projected.CancelAtPeriodEnd = true
	if err := s.store.UpsertSubscription(ctx, projected); err != nil {
		return nil, fmt.Errorf("project scheduled cancellation %s: %w", subscriptionID, err)
	}

	s.log.Info("cancellation scheduled",
		"subscription_id", subscriptionID,
		"effective_at", projected.CurrentPeriodEnd)
	result := &CancelResult{
		Status:          projected.Status,
		ScheduledChange: true,
	}
	if !projected.CurrentPeriodEnd.IsZero() {
		effective := projected.CurrentPeriodEnd
		result.EffectiveAt = &effective
	}
	return result, nil
}
