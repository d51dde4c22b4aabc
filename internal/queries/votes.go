package queries

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

type VoteParams struct {
	ChatID    string
	MessageID string
	Type      VoteType
}

// VoteMessage records the vote for (ChatID, MessageID), overwriting any earlier one.
func (q *Queries) VoteMessage(ctx context.Context, p VoteParams) (*models.Vote, error) {
	if p.Type != VoteUp && p.Type != VoteDown {
		return nil, ErrInvalidVoteType
	}
	vote := &models.Vote{
		ChatID:    p.ChatID,
		MessageID: p.MessageID,
		IsUpvoted: p.Type == VoteUp,
	}
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_upvoted"}),
	}).Create(vote).Error
	if err != nil {
		return nil, failedWithErr("VoteMessage", "Failed to vote message in database", err)
	}
	return vote, nil
}

func (q *Queries) GetVotesByChatID(ctx context.Context, chatID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := q.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&votes).Error; err != nil {
		return nil, failedWithErr("GetVotesByChatID", "Failed to get votes by chat id from database", err)
	}
	return votes, nil
}
