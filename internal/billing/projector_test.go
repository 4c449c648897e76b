package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

// memStore mirrors the persistence contract: a processed-event ledger plus
// last-write-wins projection upserts.
type memStore struct {
	processed map[string]bool
	subs      map[string]*models.Subscription
	customers map[string]string
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{
		processed: map[string]bool{},
		subs:      map[string]*models.Subscription{},
		customers: map[string]string{},
	}
}

func (s *memStore) ApplySubscription(ctx context.Context, eventID, eventType string, sub *models.Subscription) error {
	if s.failWith != nil {
		return s.failWith
	}
	if s.processed[eventID] {
		return nil
	}
	s.processed[eventID] = true
	return s.UpsertSubscription(ctx, sub)
}

func (s *memStore) LinkCustomer(ctx context.Context, eventID, eventType, email, customerID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	if s.processed[eventID] {
		return nil
	}
	s.processed[eventID] = true
	if _, linked := s.customers[email]; !linked {
		s.customers[email] = customerID
	}
	return nil
}

func (s *memStore) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	if existing, ok := s.subs[sub.ID]; ok && existing.ProviderUpdatedAt.After(sub.ProviderUpdatedAt) {
		return nil
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *memStore) GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	for _, sub := range s.subs {
		if sub.CustomerID == customerID {
			return sub, nil
		}
	}
	return nil, nil
}

type fakeProvider struct {
	sub      *stripe.Subscription
	getErr   error
	getCalls int
	cancels  int
	updates  int
}

func (f *fakeProvider) CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_new"}, nil
}

func (f *fakeProvider) CreateSubscriptionCheckout(ctx context.Context, customerID, planID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (f *fakeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sub, nil
}

func (f *fakeProvider) CancelSubscriptionNow(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.cancels++
	canceled := *f.sub
	canceled.Status = stripe.SubscriptionStatusCanceled
	return &canceled, nil
}

func (f *fakeProvider) ScheduleCancellation(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.updates++
	updated := *f.sub
	updated.CancelAtPeriodEnd = true
	return &updated, nil
}

func (f *fakeProvider) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeEvent(id, eventType string, created time.Time, object any) *stripe.Event {
	raw, err := json.Marshal(object)
	if err != nil {
		panic(err)
	}
	return &stripe.Event{
		ID:      id,
		Type:    stripe.EventType(eventType),
		Created: created.Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func subscriptionObject(status string) map[string]any {
	return map[string]any{
		"id":       "sub_1",
		"customer": "cus_1",
		"status":   status,
		"metadata": map[string]string{"plan_id": "growth"},
		"items": map[string]any{
			"data": []map[string]any{
				{
					"current_period_start": 1751328000,
					"current_period_end":   1753920000,
					"price":                map[string]any{"id": "price_signly_growth_monthly"},
				},
			},
		},
	}
}

func TestProcessEventProjectsSubscription(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "customer.subscription.created", time.Now(), subscriptionObject("active"))
	require.NoError(t, projector.ProcessEvent(context.Background(), event))

	sub := store.subs["sub_1"]
	require.NotNil(t, sub)
	require.Equal(t, "cus_1", sub.CustomerID)
	require.Equal(t, models.SubscriptionActive, sub.Status)
	require.Equal(t, "growth", sub.PlanID)
	require.Equal(t, time.Unix(1753920000, 0), sub.CurrentPeriodEnd)
}

func TestProcessEventDuplicateDeliveryAbsorbed(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "customer.subscription.created", time.Now(), subscriptionObject("active"))
	require.NoError(t, projector.ProcessEvent(context.Background(), event))
	first := *store.subs["sub_1"]

	require.NoError(t, projector.ProcessEvent(context.Background(), event))
	require.Equal(t, first, *store.subs["sub_1"])
	require.Len(t, store.processed, 1)
}

func TestProcessEventStaleDeliveryLoses(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	now := time.Now().Truncate(time.Second)
	newer := makeEvent("evt_2", "customer.subscription.updated", now, subscriptionObject("canceled"))
	older := makeEvent("evt_1", "customer.subscription.updated", now.Add(-time.Hour), subscriptionObject("active"))

	require.NoError(t, projector.ProcessEvent(context.Background(), newer))
	require.NoError(t, projector.ProcessEvent(context.Background(), older))

	require.Equal(t, models.SubscriptionCanceled, store.subs["sub_1"].Status)
}

func TestProcessEventDeletedOverridesStatus(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	// The deleted payload still reads "active"; the event type wins.
	event := makeEvent("evt_1", "customer.subscription.deleted", time.Now(), subscriptionObject("active"))
	require.NoError(t, projector.ProcessEvent(context.Background(), event))

	require.Equal(t, models.SubscriptionCanceled, store.subs["sub_1"].Status)
}

func TestProcessEventUnknownTypeIgnored(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "customer.tax_id.created", time.Now(), map[string]any{"id": "txi_1"})
	require.NoError(t, projector.ProcessEvent(context.Background(), event))

	require.Empty(t, store.subs)
	require.Empty(t, store.processed)
}

func TestProcessEventCheckoutLinksCustomer(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "checkout.session.completed", time.Now(), map[string]any{
		"id":               "cs_1",
		"customer":         "cus_1",
		"customer_details": map[string]string{"email": "buyer@example.com"},
	})
	require.NoError(t, projector.ProcessEvent(context.Background(), event))
	require.Equal(t, "cus_1", store.customers["buyer@example.com"])
}

func TestProcessEventCheckoutWithoutEmailSkipped(t *testing.T) {
	store := newMemStore()
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "checkout.session.completed", time.Now(), map[string]any{
		"id":       "cs_1",
		"customer": "cus_1",
	})
	require.NoError(t, projector.ProcessEvent(context.Background(), event))
	require.Empty(t, store.customers)
}

func TestProcessEventInvoicePaidRefetchesFromProvider(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{sub: &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_1"},
		Metadata: map[string]string{"plan_id": "growth"},
	}}
	projector := NewProjector(store, provider, discardLogger())

	event := makeEvent("evt_1", "invoice.paid", time.Now(), map[string]any{
		"customer":     "cus_1",
		"subscription": "sub_1",
	})
	require.NoError(t, projector.ProcessEvent(context.Background(), event))

	require.Equal(t, 1, provider.getCalls)
	sub := store.subs["sub_1"]
	require.NotNil(t, sub)
	require.Equal(t, "growth", sub.PlanID)
	require.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestProcessEventPersistenceFailureSurfaces(t *testing.T) {
	store := newMemStore()
	store.failWith = fmt.Errorf("disk on fire")
	projector := NewProjector(store, &fakeProvider{}, discardLogger())

	event := makeEvent("evt_1", "customer.subscription.created", time.Now(), subscriptionObject("active"))
	err := projector.ProcessEvent(context.Background(), event)
	require.Error(t, err)
	require.Empty(t, store.processed)
}
