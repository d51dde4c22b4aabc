package queries

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

type SaveDocumentParams struct {
	ID      string
	Title   string
	Kind    models.ArtifactKind
	Content string
	UserID  string
}

// SaveDocument stores a new version of document ID stamped with the current time.
func (q *Queries) SaveDocument(ctx context.Context, p SaveDocumentParams) (*models.Document, error) {
	if !p.Kind.Valid() {
		return nil, ErrInvalidArtifactKind
	}
	doc := &models.Document{
		ID:        p.ID,
		CreatedAt: now(),
		Title:     p.Title,
		Kind:      p.Kind,
		Content:   p.Content,
		UserID:    p.UserID,
	}
	if err := q.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, failed("SaveDocument", "Failed to save document in database", err)
	}
	return doc, nil
}

// GetDocumentsByID returns every version of the document, oldest first.
func (q *Queries) GetDocumentsByID(ctx context.Context, id string) ([]models.Document, error) {
	var docs []models.Document
	err := q.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at asc").
		Find(&docs).Error
	if err != nil {
		return nil, failed("GetDocumentsByID", "Failed to get document by id from database", err)
	}
	return docs, nil
}

// GetDocumentByID returns the most recent version, or nil when there is none.
func (q *Queries) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := q.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at desc").
		First(&doc).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failed("GetDocumentByID", "Failed to get document by id from database", err)
	}
	return &doc, nil
}

// DeleteDocumentsByIDAfterTimestamp removes the versions created after ts and the
// suggestions created after ts, in one transaction.
func (q *Queries) DeleteDocumentsByIDAfterTimestamp(ctx context.Context, id string, ts time.Time) (DeleteResult, error) {
	var res DeleteResult
	ts = ts.UTC()
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sugg := tx.Where("document_id = ? AND created_at > ?", id, ts).Delete(&models.Suggestion{})
		if sugg.Error != nil {
			return sugg.Error
		}
		docs := tx.Where("id = ? AND created_at > ?", id, ts).Delete(&models.Document{})
		if docs.Error != nil {
			return docs.Error
		}
		res = DeleteResult{Dependents: sugg.RowsAffected, Parents: docs.RowsAffected}
		return nil
	})
	if err != nil {
		return DeleteResult{}, failedWithErr("DeleteDocumentsByIDAfterTimestamp", "Failed to delete documents by id after timestamp from database", err)
	}
	return res, nil
}
