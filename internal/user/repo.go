package user

import (
	"context"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/uptrace/bun"
)

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	GetOrCreate(ctx context.Context, userID, email, firstName, lastName, provider string) (*models.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error
	AcceptConsent(ctx context.Context, userID, legalVersion string) error
}

type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.UserDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_email").
		Column("email").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_stripe_customer_id").
		Column("stripe_customer_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	userDB := models.UserFromDomain(user)
	userDB.CreatedAt = time.Now()
	userDB.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(userDB).Exec(ctx)
	return err
}

func (r *UserRepository) GetOrCreate(ctx context.Context, userID, email, firstName, lastName, provider string) (*models.User, error) {
	user, err := r.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}

	newUser := &models.User{
		ID:           userID,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		AuthProvider: provider,
	}

	if err := r.Create(ctx, newUser); err != nil {
		return nil, err
	}

	return newUser, nil
}

func (r *UserRepository) UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("stripe_customer_id = ?", stripeCustomerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// AcceptConsent stamps both legal documents in one statement so a crash can
// never leave a half-accepted record.
func (r *UserRepository) AcceptConsent(ctx context.Context, userID, legalVersion string) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("terms_accepted_at = ?", now).
		Set("terms_version = ?", legalVersion).
		Set("privacy_accepted_at = ?", now).
		Set("privacy_version = ?", legalVersion).
		Set("updated_at = ?", now).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
