package billing

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/signlyhq/signly/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeUserLookup struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUserLookup) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func TestGetCustomerID(t *testing.T) {
	customerID := "cus_123"
	lookup := &fakeUserLookup{users: map[string]*models.User{
		"paid@example.com": {ID: "u1", Email: "paid@example.com", StripeCustomerID: &customerID},
		"free@example.com": {ID: "u2", Email: "free@example.com"},
	}}
	resolver := NewCustomerResolver(lookup)

	got, err := resolver.GetCustomerID(context.Background(), "paid@example.com")
	require.NoError(t, err)
	require.Equal(t, customerID, got)
}

func TestGetCustomerIDNoMapping(t *testing.T) {
	lookup := &fakeUserLookup{users: map[string]*models.User{
		"free@example.com": {ID: "u2", Email: "free@example.com"},
	}}
	resolver := NewCustomerResolver(lookup)

	// A user without payment history resolves to "", not an error.
	got, err := resolver.GetCustomerID(context.Background(), "free@example.com")
	require.NoError(t, err)
	require.Empty(t, got)

	// Same for a user the repository has never seen.
	got, err = resolver.GetCustomerID(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGetCustomerIDRepositoryFailure(t *testing.T) {
	boom := errors.New("connection refused")
	resolver := NewCustomerResolver(&fakeUserLookup{err: boom})

	_, err := resolver.GetCustomerID(context.Background(), "paid@example.com")
	require.ErrorIs(t, err, boom)
}
