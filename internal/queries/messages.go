package queries

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

// SaveMessages inserts messages in one batch and returns the number of rows written.
// Messages without a CreatedAt are stamped with the insert time.
func (q *Queries) SaveMessages(ctx context.Context, messages []models.Message) (int64, error) {
	if len(messages) == 0 {
		return 0, nil
	}
	for i := range messages {
		messages[i].CreatedAt = messages[i].CreatedAt.UTC()
	}
	res := q.db.WithContext(ctx).Create(&messages)
	if res.Error != nil {
		return 0, failedWithErr("SaveMessages", "Failed to save messages in database", res.Error)
	}
	return res.RowsAffected, nil
}

// GetMessagesByChatID lists a chat's messages, oldest first.
func (q *Queries) GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := q.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, failedWithErr("GetMessagesByChatID", "Failed to get messages by chat id from database", err)
	}
	return messages, nil
}

// GetMessageByID returns nil when no message has the id.
func (q *Queries) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := q.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failed("GetMessageByID", "Failed to get message by id from database", err)
	}
	return &msg, nil
}

// DeleteMessagesByChatIDAfterTimestamp removes the chat's messages created after ts
// together with their votes, in one transaction.
func (q *Queries) DeleteMessagesByChatIDAfterTimestamp(ctx context.Context, chatID string, ts time.Time) (DeleteResult, error) {
	var res DeleteResult
	ts = ts.UTC()
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		later := tx.Model(&models.Message{}).
			Select("id").
			Where("chat_id = ? AND created_at > ?", chatID, ts)
		votes := tx.Where("chat_id = ? AND message_id IN (?)", chatID, later).Delete(&models.Vote{})
		if votes.Error != nil {
			return votes.Error
		}
		msgs := tx.Where("chat_id = ? AND created_at > ?", chatID, ts).Delete(&models.Message{})
		if msgs.Error != nil {
			return msgs.Error
		}
		res = DeleteResult{Dependents: votes.RowsAffected, Parents: msgs.RowsAffected}
		return nil
	})
	if err != nil {
		return DeleteResult{}, failedWithErr("DeleteMessagesByChatIDAfterTimestamp", "Failed to delete messages by chat id after timestamp from database", err)
	}
	return res, nil
}
