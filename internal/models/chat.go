package models

import "time"

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

type Chat struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
	Title      string     `gorm:"not null" json:"title"`
	UserID     string     `gorm:"size:36;not null;index" json:"userId"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Visibility Visibility `gorm:"size:16;not null;default:private" json:"visibility"`
}

type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ChatID    string    `gorm:"size:36;not null;index" json:"chatId"`
	Chat      *Chat     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// Vote is keyed by (ChatID, MessageID); there is at most one per message.
type Vote struct {
	ChatID    string   `gorm:"primaryKey;size:36" json:"chatId"`
	Chat      *Chat    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MessageID string   `gorm:"primaryKey;size:36" json:"messageId"`
	Message   *Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsUpvoted bool     `gorm:"not null" json:"isUpvoted"`
}
