package models

import "time"

type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentPublished DocumentStatus = "published"
	DocumentCompleted DocumentStatus = "completed"
	DocumentVoided    DocumentStatus = "voided"
)

type Document struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Title         string         `json:"title"`
	Status        DocumentStatus `json:"status"`
	StorageObject string         `json:"storage_object,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// Active documents occupy a slot against the plan's active-document limit.
func (d *Document) Active() bool {
	return d.Status == DocumentPublished
}

// UsageCounters holds per-user counters for one calendar month. The month key
// uses the YYYY-MM form so rows sort naturally.
type UsageCounters struct {
	UserID             string `json:"user_id"`
	Month              string `json:"month"`
	DocumentsCreated   int    `json:"documents_created"`
	PublishedCompleted int    `json:"published_completed"`
}

// MonthKey returns the usage-counter bucket for t.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
