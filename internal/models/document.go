package models

import "time"

type ArtifactKind string

const (
	ArtifactText  ArtifactKind = "text"
	ArtifactCode  ArtifactKind = "code"
	ArtifactImage ArtifactKind = "image"
	ArtifactSheet ArtifactKind = "sheet"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactText, ArtifactCode, ArtifactImage, ArtifactSheet:
		return true
	}
	return false
}

// Document rows sharing an ID are versions of one document, ordered by CreatedAt.
type Document struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time    `gorm:"primaryKey" json:"createdAt"`
	Title     string       `gorm:"not null" json:"title"`
	Kind      ArtifactKind `gorm:"size:16;not null;default:text" json:"kind"`
	Content   string       `json:"content"`
	UserID    string       `gorm:"size:36;not null;index" json:"userId"`
	User      *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Suggestion struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	DocumentID        string    `gorm:"size:36;not null;index" json:"documentId"`
	DocumentCreatedAt time.Time `gorm:"not null" json:"documentCreatedAt"`
	OriginalText      string    `gorm:"not null" json:"originalText"`
	SuggestedText     string    `gorm:"not null" json:"suggestedText"`
	Description       string    `json:"description,omitempty"`
	IsResolved        bool      `gorm:"not null;default:false" json:"isResolved"`
	UserID            string    `gorm:"size:36;not null;index" json:"userId"`
	User              *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time `gorm:"not null" json:"createdAt"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Account{},
		&Chat{},
		&Message{},
		&Vote{},
		&Document{},
		&Suggestion{},
	}
}
