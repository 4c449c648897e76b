package billing

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/uptrace/bun"
)

// Store persists subscription projections and the processed-event ledger.
type Store interface {
	// ApplySubscription upserts the projection for a webhook delivery.
	// Duplicate event IDs are absorbed by the ledger; stale events (older
	// provider timestamp than the stored row) leave the projection untouched.
	ApplySubscription(ctx context.Context, eventID, eventType string, sub *models.Subscription) error

	// LinkCustomer records the email -> customer mapping after the first
	// successful payment. The mapping is immutable once set.
	LinkCustomer(ctx context.Context, eventID, eventType, email, customerID string) error

	// UpsertSubscription writes a projection outside webhook processing, for
	// user-triggered changes that are reflected synchronously.
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error

	GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
}

// UsageStore provides the read side for the usage gate.
type UsageStore interface {
	MonthlyCreated(ctx context.Context, userID, month string) (int, error)
	ActiveDocuments(ctx context.Context, userID string) (int, error)
}

type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) InitializeDatabase(ctx context.Context) error {
	for _, model := range []any{
		(*models.SubscriptionDB)(nil),
		(*models.ProcessedEventDB)(nil),
		(*models.UsageCountersDB)(nil),
	} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := s.db.NewCreateIndex().
		Model((*models.SubscriptionDB)(nil)).
		Index("idx_subscriptions_customer_id").
		Column("customer_id").
		IfNotExists().
		Exec(ctx)
	return err
}

// markEventProcessed inserts into the dedup ledger. Returns false when the
// event was already recorded by an earlier delivery.
func markEventProcessed(ctx context.Context, tx bun.Tx, eventID, eventType string) (bool, error) {
	res, err := tx.NewInsert().
		Model(&models.ProcessedEventDB{
			EventID:     eventID,
			EventType:   eventType,
			ProcessedAt: time.Now(),
		}).
		On("CONFLICT (event_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func upsertSubscription(ctx context.Context, idb bun.IDB, sub *models.Subscription) error {
	subDB := models.SubscriptionFromDomain(sub)
	subDB.UpdatedAt = time.Now()

	_, err := idb.NewInsert().
		Model(subDB).
		On("CONFLICT (id) DO UPDATE").
		Set("customer_id = EXCLUDED.customer_id").
		Set("status = EXCLUDED.status").
		Set("plan_id = EXCLUDED.plan_id").
		Set("cancel_at_period_end = EXCLUDED.cancel_at_period_end").
		Set("current_period_start = EXCLUDED.current_period_start").
		Set("current_period_end = EXCLUDED.current_period_end").
		Set("provider_updated_at = EXCLUDED.provider_updated_at").
		Set("updated_at = EXCLUDED.updated_at").
		Where("s.provider_updated_at <= EXCLUDED.provider_updated_at").
		Exec(ctx)
	return err
}

func (s *BunStore) ApplySubscription(ctx context.Context, eventID, eventType string, sub *models.Subscription) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fresh, err := markEventProcessed(ctx, tx, eventID, eventType)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
		return upsertSubscription(ctx, tx, sub)
	})
}

func (s *BunStore) LinkCustomer(ctx context.Context, eventID, eventType, email, customerID string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fresh, err := markEventProcessed(ctx, tx, eventID, eventType)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
		_, err = tx.NewUpdate().
			Model((*models.UserDB)(nil)).
			Set("stripe_customer_id = ?", customerID).
			Set("updated_at = ?", time.Now()).
			Where("email = ?", email).
			Where("stripe_customer_id IS NULL").
			Exec(ctx)
		return err
	})
}

func (s *BunStore) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	return upsertSubscription(ctx, s.db, sub)
}

func (s *BunStore) GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	subDB := new(models.SubscriptionDB)
	err := s.db.NewSelect().
		Model(subDB).
		Where("customer_id = ?", customerID).
		Order("provider_updated_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return subDB.ToSubscription(), nil
}

func (s *BunStore) MonthlyCreated(ctx context.Context, userID, month string) (int, error) {
	counters := new(models.UsageCountersDB)
	err := s.db.NewSelect().
		Model(counters).
		Where("user_id = ?", userID).
		Where("month = ?", month).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return counters.DocumentsCreated, nil
}

func (s *BunStore) ActiveDocuments(ctx context.Context, userID string) (int, error) {
	return s.db.NewSelect().
		Model((*models.DocumentDB)(nil)).
		Where("user_id = ?", userID).
		Where("status = ?", string(models.DocumentPublished)).
		Count(ctx)
}
