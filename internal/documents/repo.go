package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/signlyhq/signly/internal/models"
	"github.com/uptrace/bun"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidTransition = errors.New("invalid document status transition")
)

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, docID, userID string) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Document, error)
	Transition(ctx context.Context, docID, userID string, from, to models.DocumentStatus) error
}

type DocumentRepository struct {
	db *bun.DB
}

func NewDocumentRepository(db *bun.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.DocumentDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.DocumentDB)(nil)).
		Index("idx_documents_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	return err
}

// Create inserts the document and bumps the monthly creation counter in the
// same transaction.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		docDB := models.DocumentFromDomain(doc)
		docDB.CreatedAt = time.Now()
		if _, err := tx.NewInsert().Model(docDB).Exec(ctx); err != nil {
			return err
		}
		return incrementCounter(ctx, tx, doc.UserID, "documents_created")
	})
}

func (r *DocumentRepository) GetByID(ctx context.Context, docID, userID string) (*models.Document, error) {
	docDB := new(models.DocumentDB)
	err := r.db.NewSelect().
		Model(docDB).
		Where("id = ?", docID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return docDB.ToDocument(), nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var rows []*models.DocumentDB
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.ToDocument())
	}
	return docs, nil
}

// Transition moves a document between lifecycle states. The WHERE clause on
// the current status makes concurrent transitions lose cleanly instead of
// double-applying.
func (r *DocumentRepository) Transition(ctx context.Context, docID, userID string, from, to models.DocumentStatus) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		q := tx.NewUpdate().
			Model((*models.DocumentDB)(nil)).
			Set("status = ?", string(to)).
			Where("id = ?", docID).
			Where("user_id = ?", userID).
			Where("status = ?", string(from))

		switch to {
		case models.DocumentPublished:
			q = q.Set("published_at = ?", now)
		case models.DocumentCompleted:
			q = q.Set("completed_at = ?", now)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidTransition
		}

		if to == models.DocumentCompleted {
			return incrementCounter(ctx, tx, userID, "published_completed")
		}
		return nil
	})
}

func incrementCounter(ctx context.Context, tx bun.Tx, userID, column string) error {
	counters := &models.UsageCountersDB{
		UserID: userID,
		Month:  models.MonthKey(time.Now()),
	}
	switch column {
	case "documents_created":
		counters.DocumentsCreated = 1
	case "published_completed":
		counters.PublishedCompleted = 1
	}

	_, err := tx.NewInsert().
		Model(counters).
		On("CONFLICT (user_id, month) DO UPDATE").
		Set(column + " = uc." + column + " + 1").
		Exec(ctx)
	return err
}
