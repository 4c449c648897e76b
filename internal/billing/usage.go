package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/signlyhq/signly/internal/models"
)

// LimitCheck is the entitlement snapshot consulted before document creation
// and publishing.
type LimitCheck struct {
	CanCreateNew           bool   `json:"can_create_new"`
	CanPublishMore         bool   `json:"can_publish_more"`
	CurrentMonthlyCreated  int    `json:"current_monthly_created"`
	CurrentActiveDocuments int    `json:"current_active_documents"`
	MonthlyCreationLimit   int    `json:"monthly_creation_limit"`
	ActiveDocumentLimit    int    `json:"active_document_limit"`
	PlanID                 string `json:"plan_id"`
}

// UserGetter is implemented by the user repository.
type UserGetter interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// SubscriptionLookup is the read side of the projection store.
type SubscriptionLookup interface {
	GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
}

// UsageGate answers whether a user may create or publish more documents under
// their current plan. Reads only; safe on every request.
type UsageGate struct {
	users    UserGetter
	resolver *CustomerResolver
	subs     SubscriptionLookup
	usage    UsageStore
}

func NewUsageGate(users UserGetter, resolver *CustomerResolver, subs SubscriptionLookup, usage UsageStore) *UsageGate {
	return &UsageGate{
		users:    users,
		resolver: resolver,
		subs:     subs,
		usage:    usage,
	}
}

// CheckLimits computes the entitlement snapshot for a user. A user with no
// customer mapping or no live subscription gets the default plan's limits,
// never an error.
func (g *UsageGate) CheckLimits(ctx context.Context, userID string) (*LimitCheck, error) {
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	plan, err := g.currentPlan(ctx, user)
	if err != nil {
		return nil, err
	}

	created, err := g.usage.MonthlyCreated(ctx, userID, models.MonthKey(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("monthly usage for %s: %w", userID, err)
	}
	active, err := g.usage.ActiveDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active documents for %s: %w", userID, err)
	}

	return &LimitCheck{
		CanCreateNew:           withinLimit(created, plan.MonthlyDocumentLimit),
		CanPublishMore:         withinLimit(active, plan.ActiveDocumentLimit),
		CurrentMonthlyCreated:  created,
		CurrentActiveDocuments: active,
		MonthlyCreationLimit:   plan.MonthlyDocumentLimit,
		ActiveDocumentLimit:    plan.ActiveDocumentLimit,
		PlanID:                 plan.ID,
	}, nil
}

func (g *UsageGate) currentPlan(ctx context.Context, user *models.User) (*Plan, error) {
	free := GetPlan(DefaultPlanID)

	customerID, err := g.resolver.GetCustomerID(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve customer for %s: %w", user.ID, err)
	}
	if customerID == "" {
		return free, nil
	}

	sub, err := g.subs.GetSubscriptionByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("subscription for customer %s: %w", customerID, err)
	}
	if sub == nil || !sub.Status.Entitled() {
		return free, nil
	}

	if plan := GetPlan(sub.PlanID); plan != nil {
		return plan, nil
	}
	return free, nil
}
