package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				first_name TEXT,
				last_name TEXT,
				auth_provider TEXT NOT NULL DEFAULT '',
				stripe_customer_id TEXT,
				terms_accepted_at TIMESTAMPTZ,
				terms_version TEXT DEFAULT '',
				privacy_accepted_at TIMESTAMPTZ,
				privacy_version TEXT DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
			`CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users (stripe_customer_id)`,

			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				customer_id TEXT NOT NULL,
				status TEXT NOT NULL,
				plan_id TEXT NOT NULL,
				cancel_at_period_end BOOLEAN NOT NULL DEFAULT FALSE,
				current_period_start TIMESTAMPTZ,
				current_period_end TIMESTAMPTZ,
				provider_updated_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_customer_id ON subscriptions (customer_id)`,

			`CREATE TABLE IF NOT EXISTS processed_events (
				event_id TEXT PRIMARY KEY,
				event_type TEXT NOT NULL,
				processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,

			`CREATE TABLE IF NOT EXISTS documents (
				id UUID PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft',
				storage_object TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				published_at TIMESTAMPTZ,
				completed_at TIMESTAMPTZ
			)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents (user_id)`,

			`CREATE TABLE IF NOT EXISTS usage_counters (
				user_id TEXT NOT NULL,
				month TEXT NOT NULL,
				documents_created INTEGER NOT NULL DEFAULT 0,
				published_completed INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, month)
			)`,
		}

		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			`DROP TABLE IF EXISTS usage_counters`,
			`DROP TABLE IF EXISTS documents`,
			`DROP TABLE IF EXISTS processed_events`,
			`DROP TABLE IF EXISTS subscriptions`,
			`DROP TABLE IF EXISTS users`,
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
