package sessions

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// SQLRepository keeps sessions in the relational database next to users and accounts.
type SQLRepository struct {
	db *gorm.DB
}

func NewSQLRepository(db *gorm.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SQLRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).Where("session_token = ?", token).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("session_token = ?", token).Delete(&Session{}).Error
}
