// Package auth resolves the signed-in user of a request and runs the OAuth
// sign-in flow that establishes the session cookie.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/lumen-chat/lumen/backend/go-services/internal/auth/provider"
	"github.com/lumen-chat/lumen/backend/go-services/internal/sessions"
	"github.com/lumen-chat/lumen/backend/go-services/internal/users"
)

// Strategy selects how the session cookie is materialized.
type Strategy string

const (
	// StrategyJWT keeps the session in a signed token carried by the cookie.
	StrategyJWT Strategy = "jwt"
	// StrategyDatabase keeps an opaque token in the cookie and the session in a store.
	StrategyDatabase Strategy = "database"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidState           = errors.New("oauth state mismatch")
	ErrProviderDenied         = errors.New("provider denied authorization")
)

// Config wires the dependencies of an Auth instance.
type Config struct {
	Providers *provider.Registry
	Users     *users.Service
	// Sessions is required for StrategyDatabase.
	Sessions  *sessions.Service
	Secret    string
	BaseURL   string
	TrustHost bool
	Strategy  Strategy
	MaxAge    time.Duration
	Callbacks Callbacks
}

// Auth is constructed once at startup and shared by handlers.
type Auth struct {
	providers *provider.Registry
	users     *users.Service
	sessions  *sessions.Service
	secret    string
	baseURL   string
	trustHost bool
	strategy  Strategy
	maxAge    time.Duration
	callbacks Callbacks
	secure    bool
}

func New(cfg Config) (*Auth, error) {
	if cfg.Providers == nil || len(cfg.Providers.Names()) == 0 {
		return nil, errors.New("auth: at least one provider is required")
	}
	if cfg.Users == nil {
		return nil, errors.New("auth: users service is required")
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyJWT
	}
	switch cfg.Strategy {
	case StrategyJWT:
		if cfg.Secret == "" {
			return nil, errors.New("auth: secret is required for the jwt strategy")
		}
	case StrategyDatabase:
		if cfg.Sessions == nil {
			return nil, errors.New("auth: sessions service is required for the database strategy")
		}
	default:
		return nil, errors.New("auth: unknown session strategy " + string(cfg.Strategy))
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = sessions.DefaultMaxAge
	}
	if cfg.Callbacks.Session == nil {
		cfg.Callbacks.Session = DefaultSessionCallback
	}
	if cfg.Callbacks.JWT == nil {
		cfg.Callbacks.JWT = DefaultJWTCallback
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Auth{
		providers: cfg.Providers,
		users:     cfg.Users,
		sessions:  cfg.Sessions,
		secret:    cfg.Secret,
		baseURL:   base,
		trustHost: cfg.TrustHost,
		strategy:  cfg.Strategy,
		maxAge:    cfg.MaxAge,
		callbacks: cfg.Callbacks,
		secure:    strings.HasPrefix(base, "https://"),
	}, nil
}

// Providers returns the names of the configured sign-in providers.
func (a *Auth) Providers() []string {
	return a.providers.Names()
}
