package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/lumen-chat/lumen/backend/go-services/internal/sessions"
	"github.com/lumen-chat/lumen/backend/go-services/internal/tokens"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/metrics"
)

// SignIn starts the authorization code flow with providerName (the first
// configured provider when empty). It sets the state and PKCE cookies and
// returns the URL the browser should be redirected to.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request, providerName string) (string, error) {
	if providerName == "" {
		providerName = a.providers.Names()[0]
	}
	p, err := a.providers.Get(providerName)
	if err != nil {
		return "", err
	}
	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()
	a.setCookie(w, cookieState, state, flowCookieTTL)
	a.setCookie(w, cookieVerifier, verifier, flowCookieTTL)
	if cb := safeCallbackURL(r.URL.Query().Get("callbackUrl")); cb != "" {
		a.setCookie(w, cookieCallbackURL, cb, flowCookieTTL)
	}
	return p.AuthCodeURL(state, verifier, a.redirectURL(r, p.Name())), nil
}

// Callback completes the flow started by SignIn: it checks the state, exchanges
// the code, resolves the local user and issues the session cookie.
func (a *Auth) Callback(w http.ResponseWriter, r *http.Request, providerName string) (*Session, error) {
	s, err := a.callback(w, r, providerName)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("callback_error").Inc()
		return nil, err
	}
	metrics.AuthEvents.WithLabelValues("signin").Inc()
	return s, nil
}

func (a *Auth) callback(w http.ResponseWriter, r *http.Request, providerName string) (*Session, error) {
	ctx := r.Context()
	p, err := a.providers.Get(providerName)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderDenied, e)
	}
	state := a.readCookie(r, cookieState)
	verifier := a.readCookie(r, cookieVerifier)
	a.clearCookie(w, cookieState)
	a.clearCookie(w, cookieVerifier)
	if state == "" || verifier == "" || q.Get("state") != state {
		return nil, ErrInvalidState
	}
	code := q.Get("code")
	if code == "" {
		return nil, errors.New("authorization code missing")
	}

	identity, err := p.ExchangeCode(ctx, code, verifier, a.redirectURL(r, p.Name()))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	u, err := a.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	t, err := a.callbacks.JWT(ctx, &Token{Name: u.Name, Email: u.Email, Picture: u.Image}, u)
	if err != nil {
		return nil, fmt.Errorf("jwt callback: %w", err)
	}

	var raw string
	switch a.strategy {
	case StrategyDatabase:
		raw, err = a.sessions.CreateSession(ctx, u.ID, a.maxAge)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		t.ExpiresAt = time.Now().UTC().Add(a.maxAge)
	default:
		t.ID = uuid.NewString()
		claims := &tokens.Claims{Name: t.Name, Email: t.Email, Picture: t.Picture}
		claims.Subject = t.Sub
		claims.ID = t.ID
		raw, err = tokens.Encode(a.secret, claims, a.maxAge)
		if err != nil {
			return nil, fmt.Errorf("sign session token: %w", err)
		}
		t.ExpiresAt = claims.ExpiresAt.Time
	}
	a.setCookie(w, cookieSession, raw, a.maxAge)
	// ReturnTo reads the callback URL from the request, not the response
	a.clearCookie(w, cookieCallbackURL)
	logger.Infof("user %s signed in with %s", u.ID, p.Name())

	s := &Session{
		User:    &User{Name: t.Name, Email: t.Email, Image: t.Picture},
		Expires: t.ExpiresAt,
	}
	return a.callbacks.Session(ctx, s, t)
}

// ReturnTo is the path to send the browser to after a completed sign-in.
func (a *Auth) ReturnTo(r *http.Request) string {
	if cb := safeCallbackURL(a.readCookie(r, cookieCallbackURL)); cb != "" {
		return cb
	}
	return "/"
}

// SignOut ends the session of r and clears the session cookie. Signed tokens
// are put on the revocation list until they expire; stored sessions are deleted.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	raw := a.readCookie(r, cookieSession)
	a.clearCookie(w, cookieSession)
	a.clearCookie(w, cookieCallbackURL)
	if raw == "" {
		return nil
	}
	metrics.AuthEvents.WithLabelValues("signout").Inc()
	if a.strategy == StrategyDatabase {
		return a.sessions.Delete(ctx, raw)
	}
	claims, err := tokens.Decode(a.secret, raw)
	if err != nil {
		// nothing to revoke for a token that no longer verifies
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return sessions.RevokeToken(ctx, claims.ID, ttl)
}

// redirectURL is the provider callback URL registered for this deployment.
func (a *Auth) redirectURL(r *http.Request, providerName string) string {
	return a.origin(r) + "/api/auth/callback/" + providerName
}

func (a *Auth) origin(r *http.Request) string {
	if !a.trustHost && a.baseURL != "" {
		return a.baseURL
	}
	proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := firstHeaderValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}
	return proto + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
