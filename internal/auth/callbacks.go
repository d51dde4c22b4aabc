package auth

import (
	"context"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

// SessionCallback shapes the session returned to callers from the decoded token.
type SessionCallback func(ctx context.Context, s *Session, t *Token) (*Session, error)

// JWTCallback shapes the token at sign-in. user is non-nil only on the sign-in
// that issues the token.
type JWTCallback func(ctx context.Context, t *Token, user *models.User) (*Token, error)

// Callbacks are the enrichment hooks run while issuing and reading sessions.
// Nil fields fall back to the defaults.
type Callbacks struct {
	Session SessionCallback
	JWT     JWTCallback
}

// DefaultSessionCallback copies the token subject into the session user id.
func DefaultSessionCallback(_ context.Context, s *Session, t *Token) (*Session, error) {
	if s != nil && s.User != nil && t != nil {
		s.User.ID = t.Sub
	}
	return s, nil
}

// DefaultJWTCallback records the signed-in user's id as the token subject.
func DefaultJWTCallback(_ context.Context, t *Token, user *models.User) (*Token, error) {
	if user != nil && t != nil {
		t.Sub = user.ID
	}
	return t, nil
}
