package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                string     `bun:"id,pk" json:"id"`
	Email             string     `bun:"email,notnull" json:"email"`
	FirstName         string     `bun:"first_name" json:"first_name"`
	LastName          string     `bun:"last_name" json:"last_name"`
	AuthProvider      string     `bun:"auth_provider,notnull,default:''" json:"auth_provider"`
	StripeCustomerID  *string    `bun:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	TermsAcceptedAt   *time.Time `bun:"terms_accepted_at" json:"terms_accepted_at,omitempty"`
	TermsVersion      string     `bun:"terms_version,default:''" json:"terms_version"`
	PrivacyAcceptedAt *time.Time `bun:"privacy_accepted_at" json:"privacy_accepted_at,omitempty"`
	PrivacyVersion    string     `bun:"privacy_version,default:''" json:"privacy_version"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *UserDB) ToUser() *User {
	return &User{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		AuthProvider:      u.AuthProvider,
		StripeCustomerID:  u.StripeCustomerID,
		TermsAcceptedAt:   u.TermsAcceptedAt,
		TermsVersion:      u.TermsVersion,
		PrivacyAcceptedAt: u.PrivacyAcceptedAt,
		PrivacyVersion:    u.PrivacyVersion,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func UserFromDomain(u *User) *UserDB {
	return &UserDB{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		AuthProvider:      u.AuthProvider,
		StripeCustomerID:  u.StripeCustomerID,
		TermsAcceptedAt:   u.TermsAcceptedAt,
		TermsVersion:      u.TermsVersion,
		PrivacyAcceptedAt: u.PrivacyAcceptedAt,
		PrivacyVersion:    u.PrivacyVersion,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

type SubscriptionDB struct {
	bun.BaseModel `bun:"table:subscriptions,alias:s"`

	ID                 string    `bun:"id,pk" json:"id"`
	CustomerID         string    `bun:"customer_id,notnull" json:"customer_id"`
	Status             string    `bun:"status,notnull" json:"status"`
	PlanID             string    `bun:"plan_id,notnull" json:"plan_id"`
	CancelAtPeriodEnd  bool      `bun:"cancel_at_period_end,notnull,default:false" json:"cancel_at_period_end"`
	CurrentPeriodStart time.Time `bun:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `bun:"current_period_end" json:"current_period_end"`
	ProviderUpdatedAt  time.Time `bun:"provider_updated_at,notnull" json:"provider_updated_at"`
	UpdatedAt          time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (s *SubscriptionDB) ToSubscription() *Subscription {
	return &Subscription{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		Status:             SubscriptionStatus(s.Status),
		PlanID:             s.PlanID,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		ProviderUpdatedAt:  s.ProviderUpdatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func SubscriptionFromDomain(s *Subscription) *SubscriptionDB {
	return &SubscriptionDB{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		Status:             string(s.Status),
		PlanID:             s.PlanID,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		ProviderUpdatedAt:  s.ProviderUpdatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// ProcessedEventDB is the dedup ledger for webhook deliveries. The primary key
// carries the uniqueness constraint; a row is written in the same transaction
// as the projection it belongs to.
type ProcessedEventDB struct {
	bun.BaseModel `bun:"table:processed_events,alias:pe"`

	EventID     string    `bun:"event_id,pk" json:"event_id"`
	EventType   string    `bun:"event_type,notnull" json:"event_type"`
	ProcessedAt time.Time `bun:"processed_at,notnull,default:current_timestamp" json:"processed_at"`
}

type DocumentDB struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID            string     `bun:"id,pk,type:uuid" json:"id"`
	UserID        string     `bun:"user_id,notnull" json:"user_id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Status        string     `bun:"status,notnull,default:'draft'" json:"status"`
	StorageObject string     `bun:"storage_object" json:"storage_object,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	PublishedAt   *time.Time `bun:"published_at" json:"published_at,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
}

func (d *DocumentDB) ToDocument() *Document {
	return &Document{
		ID:            d.ID,
		UserID:        d.UserID,
		Title:         d.Title,
		Status:        DocumentStatus(d.Status),
		StorageObject: d.StorageObject,
		CreatedAt:     d.CreatedAt,
		PublishedAt:   d.PublishedAt,
		CompletedAt:   d.CompletedAt,
	}
}

func DocumentFromDomain(d *Document) *DocumentDB {
	return &DocumentDB{
		ID:            d.ID,
		UserID:        d.UserID,
		Title:         d.Title,
		Status:        string(d.Status),
		StorageObject: d.StorageObject,
		CreatedAt:     d.CreatedAt,
		PublishedAt:   d.PublishedAt,
		CompletedAt:   d.CompletedAt,
	}
}

type UsageCountersDB struct {
	bun.BaseModel `bun:"table:usage_counters,alias:uc"`

	UserID             string `bun:"user_id,pk" json:"user_id"`
	Month              string `bun:"month,pk" json:"month"`
	DocumentsCreated   int    `bun:"documents_created,notnull,default:0" json:"documents_created"`
	PublishedCompleted int    `bun:"published_completed,notnull,default:0" json:"published_completed"`
}

func (c *UsageCountersDB) ToUsageCounters() *UsageCounters {
	return &UsageCounters{
		UserID:             c.UserID,
		Month:              c.Month,
		DocumentsCreated:   c.DocumentsCreated,
		PublishedCompleted: c.PublishedCompleted,
	}
}
