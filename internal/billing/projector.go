package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/stripe/stripe-go/v84"
)

// Projector folds provider webhook events into the local subscription
// projection. Processing is idempotent: replays of the same event ID are
// absorbed by the ledger, and out-of-order deliveries lose to newer provider
// timestamps.
type Projector struct {
	store    Store
	provider ProviderClient
	log      *slog.Logger
}

func NewProjector(store Store, provider ProviderClient, log *slog.Logger) *Projector {
	return &Projector{
		store:    store,
		provider: provider,
		log:      log,
	}
}

// ProcessEvent dispatches a verified webhook event. Unknown event types are
// logged and ignored. Persistence failures are returned so the ingest layer
// answers non-2xx and the provider redelivers.
func (p *Projector) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return p.applySubscriptionEvent(ctx, event, "")

	case "customer.subscription.deleted":
		return p.applySubscriptionEvent(ctx, event, models.SubscriptionCanceled)

	case "checkout.session.completed":
		return p.handleCheckoutCompleted(ctx, event)

	case "invoice.paid":
		return p.handleInvoicePaid(ctx, event)

	default:
		p.log.Info("webhook event ignored",
			"event_id", event.ID,
			"event_type", string(event.Type))
		return nil
	}
}

func (p *Projector) applySubscriptionEvent(ctx context.Context, event *stripe.Event, override models.SubscriptionStatus) error {
	payload, err := parseEventData[subscriptionPayload](event)
	if err != nil {
		return fmt.Errorf("parse subscription event %s: %w", event.ID, err)
	}

	sub := payload.toSubscription(time.Unix(event.Created, 0))
	if override != "" {
		sub.Status = override
	}
	if sub.PlanID == "" {
		p.log.Warn("subscription event carries no known plan, defaulting",
			"event_id", event.ID,
			"subscription_id", sub.ID)
		sub.PlanID = DefaultPlanID
	}

	if err := p.store.ApplySubscription(ctx, event.ID, string(event.Type), sub); err != nil {
		return fmt.Errorf("project subscription %s: %w", sub.ID, err)
	}

	p.log.Info("subscription projected",
		"event_id", event.ID,
		"event_type", string(event.Type),
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"status", string(sub.Status))
	return nil
}

// handleCheckoutCompleted records the email -> customer mapping. This is the
// first moment a user gains paid history; the mapping never changes after.
func (p *Projector) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	session, err := parseEventData[checkoutSessionPayload](event)
	if err != nil {
		return fmt.Errorf("parse checkout session %s: %w", event.ID, err)
	}

	email := session.email()
	if email == "" || session.Customer == "" {
		p.log.Warn("checkout session missing customer or email, skipping",
			"event_id", event.ID,
			"session_id", session.ID)
		return nil
	}

	if err := p.store.LinkCustomer(ctx, event.ID, string(event.Type), email, session.Customer); err != nil {
		return fmt.Errorf("link customer %s: %w", session.Customer, err)
	}

	p.log.Info("customer mapping recorded",
		"event_id", event.ID,
		"customer_id", session.Customer)
	return nil
}

// handleInvoicePaid refreshes the projection at billing-cycle boundaries.
// The subscription is re-fetched from the provider rather than trusting the
// invoice payload for entitlement fields.
func (p *Projector) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	invoice, err := parseEventData[invoicePayload](event)
	if err != nil {
		return fmt.Errorf("parse invoice %s: %w", event.ID, err)
	}
	if invoice.Subscription == "" {
		return nil
	}

	sub, err := p.provider.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return fmt.Errorf("refresh subscription %s: %w", invoice.Subscription, err)
	}

	projected := projectionFromProvider(sub, time.Unix(event.Created, 0))
	if err := p.store.ApplySubscription(ctx, event.ID, string(event.Type), projected); err != nil {
		return fmt.Errorf("project subscription %s: %w", projected.ID, err)
	}

	p.log.Info("billing cycle projected",
		"event_id", event.ID,
		"subscription_id", projected.ID,
		"period_end", projected.CurrentPeriodEnd)
	return nil
}

func parseEventData[T any](event *stripe.Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

type subscriptionPayload struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	Metadata          map[string]string `json:"metadata"`
	Items             struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID       string            `json:"id"`
				Metadata map[string]string `json:"metadata"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (sp *subscriptionPayload) planID() string {
	if id := sp.Metadata["plan_id"]; id != "" {
		return id
	}
	for _, item := range sp.Items.Data {
		if id := item.Price.Metadata["plan_id"]; id != "" {
			return id
		}
		if plan := GetPlanByPriceID(item.Price.ID); plan != nil {
			return plan.ID
		}
	}
	return ""
}

func (sp *subscriptionPayload) toSubscription(providerTime time.Time) *models.Subscription {
	sub := &models.Subscription{
		ID:                sp.ID,
		CustomerID:        sp.Customer,
		Status:            models.SubscriptionStatus(sp.Status),
		PlanID:            sp.planID(),
		CancelAtPeriodEnd: sp.CancelAtPeriodEnd,
		ProviderUpdatedAt: providerTime,
	}
	if len(sp.Items.Data) > 0 {
		item := sp.Items.Data[0]
		sub.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0)
		sub.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0)
	}
	return sub
}

type checkoutSessionPayload struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

func (cs *checkoutSessionPayload) email() string {
	if email := strings.TrimSpace(cs.CustomerDetails.Email); email != "" {
		return email
	}
	return strings.TrimSpace(cs.CustomerEmail)
}

type invoicePayload struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

// projectionFromProvider builds a projection row from a subscription fetched
// directly from the provider.
func projectionFromProvider(sub *stripe.Subscription, providerTime time.Time) *models.Subscription {
	projected := &models.Subscription{
		ID:                sub.ID,
		Status:            models.SubscriptionStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		ProviderUpdatedAt: providerTime,
	}
	if sub.Customer != nil {
		projected.CustomerID = sub.Customer.ID
	}
	if id := sub.Metadata["plan_id"]; id != "" {
		projected.PlanID = id
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		projected.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0)
		projected.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0)
		if projected.PlanID == "" && item.Price != nil {
			if plan := GetPlanByPriceID(item.Price.ID); plan != nil {
				projected.PlanID = plan.ID
			}
		}
	}
	if projected.PlanID == "" {
		projected.PlanID = DefaultPlanID
	}
	return projected
}
