package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/signlyhq/signly/internal/billing"
	"github.com/signlyhq/signly/internal/models"
)

var ErrLimitReached = errors.New("plan limit reached")

// URLIssuer is the storage dependency; satisfied by storage.SignedURLIssuer.
type URLIssuer interface {
	DownloadURL(objectName string) (string, error)
}

// LimitChecker is the entitlement read path consulted before mutations.
type LimitChecker interface {
	CheckLimits(ctx context.Context, userID string) (*billing.LimitCheck, error)
}

type Service struct {
	repo Repository
	gate LimitChecker
	urls URLIssuer
}

func NewService(repo Repository, gate LimitChecker, urls URLIssuer) *Service {
	return &Service{
		repo: repo,
		gate: gate,
		urls: urls,
	}
}

// Create makes a draft document if the monthly creation limit allows it. The
// gate read and the counter write are not one transaction; a concurrent
// create may briefly overshoot the limit, which billing tolerates.
func (s *Service) Create(ctx context.Context, userID, title string) (*models.Document, error) {
	limits, err := s.gate.CheckLimits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !limits.CanCreateNew {
		return nil, fmt.Errorf("%w: %d of %d documents this month", ErrLimitReached,
			limits.CurrentMonthlyCreated, limits.MonthlyCreationLimit)
	}

	doc := &models.Document{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         title,
		Status:        models.DocumentDraft,
		StorageObject: fmt.Sprintf("documents/%s/%s.pdf", userID, uuid.New().String()),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Publish sends a draft out for signature, occupying an active-document slot.
func (s *Service) Publish(ctx context.Context, userID, docID string) error {
	limits, err := s.gate.CheckLimits(ctx, userID)
	if err != nil {
		return err
	}
	if !limits.CanPublishMore {
		return fmt.Errorf("%w: %d of %d active documents", ErrLimitReached,
			limits.CurrentActiveDocuments, limits.ActiveDocumentLimit)
	}

	return s.repo.Transition(ctx, docID, userID, models.DocumentDraft, models.DocumentPublished)
}

// Complete marks a published document fully signed and frees its slot.
func (s *Service) Complete(ctx context.Context, userID, docID string) error {
	return s.repo.Transition(ctx, docID, userID, models.DocumentPublished, models.DocumentCompleted)
}

// Void withdraws a published document before completion.
func (s *Service) Void(ctx context.Context, userID, docID string) error {
	return s.repo.Transition(ctx, docID, userID, models.DocumentPublished, models.DocumentVoided)
}

func (s *Service) Get(ctx context.Context, userID, docID string) (*models.Document, error) {
	return s.repo.GetByID(ctx, docID, userID)
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.repo.ListByUser(ctx, userID)
}

// DownloadURL returns a short-lived signed URL for a completed document's
// archive copy.
func (s *Service) DownloadURL(ctx context.Context, userID, docID string) (string, error) {
	doc, err := s.repo.GetByID(ctx, docID, userID)
	if err != nil {
		return "", err
	}
	if doc.Status != models.DocumentCompleted {
		return "", fmt.Errorf("%w: document %s is not completed", ErrInvalidTransition, docID)
	}
	return s.urls.DownloadURL(doc.StorageObject)
}
