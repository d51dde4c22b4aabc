package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an application user. Password holds a bcrypt hash and stays empty for
// users created through an OAuth sign-in.
type User struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string     `gorm:"size:255" json:"-"`
	Name          string     `gorm:"size:255" json:"name,omitempty"`
	Image         string     `json:"image,omitempty"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Account links a user to an identity at an OAuth provider.
type Account struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"size:36;not null;index" json:"userId"`
	User              *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type              string    `gorm:"size:32;not null" json:"type"`
	Provider          string    `gorm:"size:64;not null;uniqueIndex:idx_accounts_provider_account" json:"provider"`
	ProviderAccountID string    `gorm:"size:255;not null;uniqueIndex:idx_accounts_provider_account" json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
