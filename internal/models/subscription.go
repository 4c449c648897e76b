package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionPaused   SubscriptionStatus = "paused"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Entitled reports whether the subscription grants access to its plan.
// past_due keeps access until the provider cancels or pauses it.
func (s SubscriptionStatus) Entitled() bool {
	switch s {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		return true
	}
	return false
}

// Subscription is the local projection of a provider-owned subscription,
// folded from webhook events. The provider stays the source of truth; this
// row exists so entitlement reads never need a network call.
type Subscription struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	Status             SubscriptionStatus `json:"status"`
	PlanID             string             `json:"plan_id"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	ProviderUpdatedAt  time.Time          `json:"provider_updated_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
