package queries

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

const passwordCost = 10

// GetUser returns every user registered with email (zero or one row).
func (q *Queries) GetUser(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	if err := q.db.WithContext(ctx).Where("email = ?", email).Find(&users).Error; err != nil {
		return nil, failed("GetUser", "Failed to get user from database", err)
	}
	return users, nil
}

// CreateUser stores a new user with a bcrypt hash of password.
func (q *Queries) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, failed("CreateUser", "Failed to create user in database", err)
	}
	u := &models.User{Email: email, Password: string(hash)}
	if err := q.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, failed("CreateUser", "Failed to create user in database", err)
	}
	return u, nil
}
