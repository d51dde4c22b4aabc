package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumen-chat/lumen/backend/go-services/internal/auth"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// SessionResolver is the minimal interface the session middleware depends on
type SessionResolver interface {
	Session(ctx context.Context, r *http.Request) (*auth.Session, error)
}

// SessionMiddleware resolves the session cookie once per request and stores the
// result in the request context. Requests without a valid session continue
// anonymously.
func SessionMiddleware(res SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := res.Session(c.Request.Context(), c.Request)
		if err != nil {
			logger.Warnf("session middleware: %v", err)
			s = nil
		}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), s))
		if s != nil && s.User != nil {
			c.Set("user", s.User)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless SessionMiddleware found a signed-in user.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.RequireUser(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// rateLimitKey prefers the signed-in user id, otherwise the client IP.
func rateLimitKey(c *gin.Context) string {
	if u := auth.UserFromContext(c.Request.Context()); u != nil && u.ID != "" {
		return "user:" + u.ID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
