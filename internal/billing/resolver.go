package billing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/signlyhq/signly/internal/models"
)

// UserLookup is implemented by the user repository.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CustomerResolver maps a local user to their payments-provider customer ID.
type CustomerResolver struct {
	users UserLookup
}

func NewCustomerResolver(users UserLookup) *CustomerResolver {
	return &CustomerResolver{users: users}
}

// GetCustomerID returns the customer ID mapped to email, or "" when the user
// has no payment history. Callers must treat "" as the free tier, not a fault.
func (r *CustomerResolver) GetCustomerID(ctx context.Context, email string) (string, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if user == nil || user.StripeCustomerID == nil {
		return "", nil
	}
	return *user.StripeCustomerID, nil
}
