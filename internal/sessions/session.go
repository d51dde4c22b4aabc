package sessions

import "time"

// Session is a server-side sign-in session referenced by an opaque token
// held in the session cookie.
type Session struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id,omitempty" json:"id"`
	SessionToken string    `gorm:"uniqueIndex;size:128;not null" bson:"sessionToken" json:"sessionToken"`
	UserID       string    `gorm:"size:36;not null;index" bson:"userId" json:"userId"`
	ExpiresAt    time.Time `gorm:"not null" bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

func (Session) TableName() string { return "sessions" }
