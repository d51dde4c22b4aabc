package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	cookieSession     = "authjs.session-token"
	cookieState       = "authjs.state"
	cookieVerifier    = "authjs.pkce.code_verifier"
	cookieCallbackURL = "authjs.callback-url"

	flowCookieTTL = 5 * time.Minute
)

// cookieName adds the __Secure- prefix when the site is served over https.
func (a *Auth) cookieName(base string) string {
	if a.secure {
		return "__Secure-" + base
	}
	return base
}

// SessionCookieName is the name of the cookie carrying the session.
func (a *Auth) SessionCookieName() string {
	return a.cookieName(cookieSession)
}

func (a *Auth) setCookie(w http.ResponseWriter, base, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName(base),
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) clearCookie(w http.ResponseWriter, base string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName(base),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) readCookie(r *http.Request, base string) string {
	c, err := r.Cookie(a.cookieName(base))
	if err != nil {
		return ""
	}
	return c.Value
}

// safeCallbackURL accepts only same-site absolute paths.
func safeCallbackURL(v string) string {
	if !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/\\") {
		return ""
	}
	return v
}
