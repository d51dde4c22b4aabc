package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumen-chat/lumen/backend/go-services/internal/auth"
	"github.com/lumen-chat/lumen/backend/go-services/internal/auth/provider"
	"github.com/lumen-chat/lumen/backend/go-services/internal/queries"
	"github.com/lumen-chat/lumen/backend/go-services/internal/users"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	auth    *auth.Auth
	queries *queries.Queries
}

// NewAuthHandler builds the handler. q may be nil, in which case /me omits
// the user's chats.
func NewAuthHandler(a *auth.Auth, q *queries.Queries) *AuthHandler {
	return &AuthHandler{auth: a, queries: q}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.GET("/signin", h.SignIn)
	a.GET("/callback/:provider", h.Callback)
	a.POST("/signout", h.SignOut)
	a.GET("/session", h.Session)
	a.GET("/providers", h.Providers)
}

// SignIn redirects the browser to the provider's authorization page.
func (h *AuthHandler) SignIn(c *gin.Context) {
	target, err := h.auth.SignIn(c.Writer, c.Request, c.Query("provider"))
	if err != nil {
		if errors.Is(err, provider.ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("sign-in failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback finishes the provider round trip and redirects to the page that
// started the sign-in.
func (h *AuthHandler) Callback(c *gin.Context) {
	_, err := h.auth.Callback(c.Writer, c.Request, c.Param("provider"))
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnknownProvider):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrInvalidState), errors.Is(err, auth.ErrProviderDenied),
			errors.Is(err, users.ErrAccountNotLinked):
			logger.Warnf("sign-in callback rejected: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Errorf("sign-in callback failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		}
		return
	}
	c.Redirect(http.StatusFound, h.auth.ReturnTo(c.Request))
}

// SignOut ends the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Writer, c.Request); err != nil {
		logger.Errorf("sign-out failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Session returns the current session, or an empty object when signed out.
func (h *AuthHandler) Session(c *gin.Context) {
	s, err := h.auth.Session(c.Request.Context(), c.Request)
	if err != nil {
		logger.Warnf("session lookup failed: %v", err)
	}
	if err != nil || s == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s)
}

// Providers lists the configured sign-in providers.
func (h *AuthHandler) Providers(c *gin.Context) {
	out := gin.H{}
	for _, name := range h.auth.Providers() {
		out[name] = gin.H{
			"id":        name,
			"type":      "oauth",
			"signinUrl": "/api/auth/signin?provider=" + name,
		}
	}
	c.JSON(http.StatusOK, out)
}

// Me returns the signed-in user and their chats. It expects SessionMiddleware
// to have run.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.auth.RequireAuth(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if h.queries == nil {
		c.JSON(http.StatusOK, gin.H{"user": u})
		return
	}
	chats, err := h.queries.GetChatsByUserID(c.Request.Context(), u.ID)
	if err != nil {
		logger.Errorf("load chats for %s: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "chats": chats})
}
