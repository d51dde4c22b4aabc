package users

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

// UserRepository defines persistence operations for users and their provider accounts.
// Lookups that find nothing return (nil, nil).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error)
	CreateWithAccount(ctx context.Context, u *models.User, a *models.Account) error
	LinkAccount(ctx context.Context, a *models.Account) error
}

// GormUserRepository implements UserRepository on the relational database.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func first(tx *gorm.DB) (*models.User, error) {
	var u models.User
	if err := tx.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *GormUserRepository) GetByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error) {
	return first(r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.user_id = users.id").
		Where("accounts.provider = ? AND accounts.provider_account_id = ?", provider, providerAccountID))
}

// CreateWithAccount inserts the user and its first account in one transaction.
func (r *GormUserRepository) CreateWithAccount(ctx context.Context, u *models.User, a *models.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		a.UserID = u.ID
		return tx.Create(a).Error
	})
}

func (r *GormUserRepository) LinkAccount(ctx context.Context, a *models.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}
