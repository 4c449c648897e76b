package user

import (
	"context"

	"github.com/signlyhq/signly/internal/billing"
	"github.com/signlyhq/signly/internal/models"
)

type Service interface {
	GetOrCreate(ctx context.Context, userID, email, firstName, lastName, provider string) (*models.User, error)
	EnsureCustomer(ctx context.Context, user *models.User) (string, error)
	AcceptConsent(ctx context.Context, userID, legalVersion string) error
}

type UserService struct {
	repo     Repository
	provider billing.ProviderClient
}

func NewUserService(repo Repository, provider billing.ProviderClient) *UserService {
	return &UserService{
		repo:     repo,
		provider: provider,
	}
}

func (s *UserService) GetOrCreate(ctx context.Context, userID, email, firstName, lastName, provider string) (*models.User, error) {
	return s.repo.GetOrCreate(ctx, userID, email, firstName, lastName, provider)
}

// EnsureCustomer returns the user's payments customer ID, creating one on
// first use. Called from the checkout path only: a user who never buys keeps
// no customer mapping, which the entitlement reads treat as the free tier.
func (s *UserService) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customer, err := s.provider.CreateCustomer(ctx, user.ID, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateStripeCustomerID(ctx, user.ID, customer.ID); err != nil {
		return "", err
	}
	user.StripeCustomerID = &customer.ID
	return customer.ID, nil
}

func (s *UserService) AcceptConsent(ctx context.Context, userID, legalVersion string) error {
	return s.repo.AcceptConsent(ctx, userID, legalVersion)
}
