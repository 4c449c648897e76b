package documents

import (
	"context"
	"testing"

	"github.com/signlyhq/signly/internal/billing"
	"github.com/signlyhq/signly/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	docs map[string]*models.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]*models.Document{}}
}

func (r *fakeRepo) InitializeDatabase(ctx context.Context) error { return nil }

func (r *fakeRepo) Create(ctx context.Context, doc *models.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID, userID string) (*models.Document, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *fakeRepo) Transition(ctx context.Context, docID, userID string, from, to models.DocumentStatus) error {
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID || doc.Status != from {
		return ErrInvalidTransition
	}
	doc.Status = to
	return nil
}

type fakeGate struct {
	limits billing.LimitCheck
}

func (g *fakeGate) CheckLimits(ctx context.Context, userID string) (*billing.LimitCheck, error) {
	limits := g.limits
	return &limits, nil
}

type fakeIssuer struct {
	issued []string
}

func (f *fakeIssuer) DownloadURL(objectName string) (string, error) {
	f.issued = append(f.issued, objectName)
	return "https://signed.example/" + objectName, nil
}

func openGate() *fakeGate {
	return &fakeGate{limits: billing.LimitCheck{CanCreateNew: true, CanPublishMore: true}}
}

func TestCreateDeniedAtMonthlyLimit(t *testing.T) {
	gate := &fakeGate{limits: billing.LimitCheck{
		CanCreateNew:          false,
		CurrentMonthlyCreated: 3,
		MonthlyCreationLimit:  3,
	}}
	svc := NewService(newFakeRepo(), gate, &fakeIssuer{})

	_, err := svc.Create(context.Background(), "u1", "NDA")
	require.ErrorIs(t, err, ErrLimitReached)
}

func TestCreateMakesDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, openGate(), &fakeIssuer{})

	doc, err := svc.Create(context.Background(), "u1", "NDA")
	require.NoError(t, err)
	require.Equal(t, models.DocumentDraft, doc.Status)
	require.NotEmpty(t, doc.ID)
	require.NotEmpty(t, doc.StorageObject)
	require.Contains(t, repo.docs, doc.ID)
}

func TestPublishDeniedAtActiveLimit(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &models.Document{ID: "d1", UserID: "u1", Status: models.DocumentDraft}
	gate := &fakeGate{limits: billing.LimitCheck{
		CanCreateNew:           true,
		CanPublishMore:         false,
		CurrentActiveDocuments: 1,
		ActiveDocumentLimit:    1,
	}}
	svc := NewService(repo, gate, &fakeIssuer{})

	err := svc.Publish(context.Background(), "u1", "d1")
	require.ErrorIs(t, err, ErrLimitReached)
	require.Equal(t, models.DocumentDraft, repo.docs["d1"].Status)
}

func TestLifecycleTransitions(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &models.Document{ID: "d1", UserID: "u1", Status: models.DocumentDraft}
	svc := NewService(repo, openGate(), &fakeIssuer{})
	ctx := context.Background()

	require.NoError(t, svc.Publish(ctx, "u1", "d1"))
	require.Equal(t, models.DocumentPublished, repo.docs["d1"].Status)

	require.NoError(t, svc.Complete(ctx, "u1", "d1"))
	require.Equal(t, models.DocumentCompleted, repo.docs["d1"].Status)

	// A completed document cannot be voided.
	require.ErrorIs(t, svc.Void(ctx, "u1", "d1"), ErrInvalidTransition)
}

func TestDownloadURLOnlyForCompleted(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &models.Document{
		ID: "d1", UserID: "u1",
		Status:        models.DocumentPublished,
		StorageObject: "documents/u1/d1.pdf",
	}
	issuer := &fakeIssuer{}
	svc := NewService(repo, openGate(), issuer)
	ctx := context.Background()

	_, err := svc.DownloadURL(ctx, "u1", "d1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, issuer.issued)

	repo.docs["d1"].Status = models.DocumentCompleted
	url, err := svc.DownloadURL(ctx, "u1", "d1")
	require.NoError(t, err)
	require.Equal(t, "https://signed.example/documents/u1/d1.pdf", url)
}

func TestCrossUserAccessHidden(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &models.Document{ID: "d1", UserID: "u1", Status: models.DocumentDraft}
	svc := NewService(repo, openGate(), &fakeIssuer{})

	_, err := svc.Get(context.Background(), "u2", "d1")
	require.ErrorIs(t, err, ErrNotFound)
}
