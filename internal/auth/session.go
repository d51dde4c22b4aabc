package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lumen-chat/lumen/backend/go-services/internal/sessions"
	"github.com/lumen-chat/lumen/backend/go-services/internal/tokens"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// User is the public part of the signed-in user exposed to handlers.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is the materialized session of a request.
type Session struct {
	User    *User     `json:"user,omitempty"`
	Expires time.Time `json:"expires"`
}

// Token is the decoded session token handed to the callbacks.
type Token struct {
	Sub       string
	Name      string
	Email     string
	Picture   string
	ID        string
	ExpiresAt time.Time
}

func (s *Session) user() *User {
	if s == nil || s.User == nil {
		return nil
	}
	u := *s.User
	return &u
}

type sessionKey struct{}

type resolved struct{ s *Session }

// WithSession stores the session resolved for a request. A nil session records
// that the request was resolved and carries no session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, resolved{s: s})
}

// SessionFromContext returns the stored session and whether one was resolved.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	v, ok := ctx.Value(sessionKey{}).(resolved)
	if !ok {
		return nil, false
	}
	return v.s, true
}

func UserFromContext(ctx context.Context) *User {
	s, _ := SessionFromContext(ctx)
	return s.user()
}

func RequireUser(ctx context.Context) (*User, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return nil, ErrAuthenticationRequired
	}
	return u, nil
}

// Session materializes the session carried by the request cookie. A missing,
// expired or revoked session yields (nil, nil).
func (a *Auth) Session(ctx context.Context, r *http.Request) (*Session, error) {
	raw := a.readCookie(r, cookieSession)
	if raw == "" {
		return nil, nil
	}
	if a.strategy == StrategyDatabase {
		return a.databaseSession(ctx, raw)
	}
	return a.jwtSession(ctx, raw)
}

func (a *Auth) jwtSession(ctx context.Context, raw string) (*Session, error) {
	claims, err := tokens.Decode(a.secret, raw)
	if errors.Is(err, tokens.ErrMissingSecret) {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	if err != nil {
		// expired, tampered or malformed tokens are just signed out
		logger.Debugf("discarding session token: %v", err)
		return nil, nil
	}
	revoked, err := sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, nil
	}
	t := &Token{
		Sub:     claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
		ID:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		t.ExpiresAt = claims.ExpiresAt.Time
	}
	s := &Session{
		User:    &User{Name: t.Name, Email: t.Email, Image: t.Picture},
		Expires: t.ExpiresAt,
	}
	return a.callbacks.Session(ctx, s, t)
}

func (a *Auth) databaseSession(ctx context.Context, raw string) (*Session, error) {
	stored, err := a.sessions.Validate(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if stored == nil {
		return nil, nil
	}
	u, err := a.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	t := &Token{Sub: u.ID, Name: u.Name, Email: u.Email, Picture: u.Image, ExpiresAt: stored.ExpiresAt}
	s := &Session{
		User:    &User{Name: u.Name, Email: u.Email, Image: u.Image},
		Expires: stored.ExpiresAt,
	}
	return a.callbacks.Session(ctx, s, t)
}

// CurrentUser returns the signed-in user of r, or nil. It never fails: lookup
// errors are logged and treated as no session.
func (a *Auth) CurrentUser(r *http.Request) *User {
	if s, ok := SessionFromContext(r.Context()); ok {
		return s.user()
	}
	s, err := a.Session(r.Context(), r)
	if err != nil {
		logger.Warnf("session lookup failed: %v", err)
		return nil
	}
	return s.user()
}

// RequireAuth is CurrentUser that reports ErrAuthenticationRequired instead of nil.
func (a *Auth) RequireAuth(r *http.Request) (*User, error) {
	u := a.CurrentUser(r)
	if u == nil {
		return nil, ErrAuthenticationRequired
	}
	return u, nil
}

func (a *Auth) IsAuthenticated(r *http.Request) bool {
	return a.CurrentUser(r) != nil
}
