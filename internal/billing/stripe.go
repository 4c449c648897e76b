package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// ProviderClient is the slice of the payments provider the billing components
// depend on. The concrete client is built once at startup and injected.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error)
	CreateSubscriptionCheckout(ctx context.Context, customerID, planID, successURL, cancelURL string) (*stripe.CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	CancelSubscriptionNow(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ScheduleCancellation(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error)
}

type Client struct {
	sc            *stripe.Client
	webhookSecret string
}

func NewClient(sc *stripe.Client, webhookSecret string) *Client {
	return &Client{
		sc:            sc,
		webhookSecret: webhookSecret,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"user_id": userID},
	}
	customer, err := c.sc.V1Customers.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: create customer: %v", ErrUpstreamProvider, err)
	}
	return customer, nil
}

func (c *Client) CreateSubscriptionCheckout(ctx context.Context, customerID, planID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	plan := GetPlan(planID)
	if plan == nil || plan.StripePriceID == "" {
		return nil, fmt.Errorf("plan %q is not purchasable", planID)
	}

	params := &stripe.CheckoutSessionCreateParams{
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		SubscriptionData: &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: map[string]string{"plan_id": plan.ID},
		},
	}
	session, err := c.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrUpstreamProvider, err)
	}
	return session, nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, err := c.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve subscription: %w", ErrUpstreamProvider, err)
	}
	return sub, nil
}

func (c *Client) CancelSubscriptionNow(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, err := c.sc.V1Subscriptions.Cancel(ctx, subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cancel subscription: %v", ErrUpstreamProvider, err)
	}
	return sub, nil
}

func (c *Client) ScheduleCancellation(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	sub, err := c.sc.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule cancellation: %v", ErrUpstreamProvider, err)
	}
	return sub, nil
}

func (c *Client) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret is unset", ErrConfiguration)
	}
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}
