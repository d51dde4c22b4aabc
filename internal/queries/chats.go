package queries

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

type SaveChatParams struct {
	ID     string
	UserID string
	Title  string
}

// SaveChat creates a private chat stamped with the current time.
func (q *Queries) SaveChat(ctx context.Context, p SaveChatParams) (*models.Chat, error) {
	chat := &models.Chat{
		ID:         p.ID,
		CreatedAt:  now(),
		UserID:     p.UserID,
		Title:      p.Title,
		Visibility: models.VisibilityPrivate,
	}
	if err := q.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, failed("SaveChat", "Failed to save chat in database", err)
	}
	return chat, nil
}

// DeleteChatByID deletes the chat and returns it. Messages and votes go with it
// through the schema's cascade. A missing chat yields gorm.ErrRecordNotFound.
func (q *Queries) DeleteChatByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&chat).Error; err != nil {
			return err
		}
		return tx.Delete(&chat).Error
	})
	if err != nil {
		return nil, failed("DeleteChatByID", "Failed to delete chat by id from database", err)
	}
	return &chat, nil
}

// GetChatsByUserID lists the user's chats, newest first.
func (q *Queries) GetChatsByUserID(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := q.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&chats).Error
	if err != nil {
		return nil, failed("GetChatsByUserID", "Failed to get chats by user from database", err)
	}
	return chats, nil
}

// GetChatByID returns nil when no chat has the id.
func (q *Queries) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := q.db.WithContext(ctx).Where("id = ?", id).First(&chat).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failed("GetChatByID", "Failed to get chat by id from database", err)
	}
	return &chat, nil
}

// UpdateChatVisibilityByID sets the visibility and returns the updated chat.
// A missing chat yields gorm.ErrRecordNotFound.
func (q *Queries) UpdateChatVisibilityByID(ctx context.Context, chatID string, visibility models.Visibility) (*models.Chat, error) {
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}
	var chat models.Chat
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", chatID).First(&chat).Error; err != nil {
			return err
		}
		return tx.Model(&chat).Update("visibility", visibility).Error
	})
	if err != nil {
		return nil, failed("UpdateChatVisibilityByID", "Failed to update chat visibility", err)
	}
	chat.Visibility = visibility
	return &chat, nil
}
