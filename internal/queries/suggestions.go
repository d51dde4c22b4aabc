package queries

import (
	"context"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

// SaveSuggestions inserts suggestions in one batch and returns the number of rows written.
func (q *Queries) SaveSuggestions(ctx context.Context, suggestions []models.Suggestion) (int64, error) {
	if len(suggestions) == 0 {
		return 0, nil
	}
	for i := range suggestions {
		suggestions[i].CreatedAt = suggestions[i].CreatedAt.UTC()
		suggestions[i].DocumentCreatedAt = suggestions[i].DocumentCreatedAt.UTC()
	}
	res := q.db.WithContext(ctx).Create(&suggestions)
	if res.Error != nil {
		return 0, failed("SaveSuggestions", "Failed to save suggestions in database", res.Error)
	}
	return res.RowsAffected, nil
}

// GetSuggestionsByDocumentID lists suggestions for a document, newest first.
func (q *Queries) GetSuggestionsByDocumentID(ctx context.Context, documentID string) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	err := q.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at desc").
		Find(&suggestions).Error
	if err != nil {
		return nil, failed("GetSuggestionsByDocumentID", "Failed to get suggestions by document id from database", err)
	}
	return suggestions, nil
}
