package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-chat/lumen/backend/go-services/internal/auth"
	"github.com/lumen-chat/lumen/backend/go-services/internal/auth/provider"
	"github.com/lumen-chat/lumen/backend/go-services/internal/database"
	"github.com/lumen-chat/lumen/backend/go-services/internal/queries"
	"github.com/lumen-chat/lumen/backend/go-services/internal/sessions"
	"github.com/lumen-chat/lumen/backend/go-services/internal/users"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/middleware"
)

// stubProvider accepts the code "ok" and returns a fixed identity
type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) AuthCodeURL(state, verifier, redirectURL string) string {
	return "https://idp.test/authorize?" + url.Values{"state": {state}, "redirect_uri": {redirectURL}}.Encode()
}

func (stubProvider) ExchangeCode(ctx context.Context, code, verifier, redirectURL string) (*provider.Identity, error) {
	if code != "ok" {
		return nil, errors.New("invalid_grant")
	}
	return &provider.Identity{Provider: "stub", ProviderAccountID: "7", Email: "alice@example.com", Name: "Alice"}, nil
}

func newTestRouter(t *testing.T, strategy auth.Strategy) *gin.Engine {
	t.Helper()
	r, _ := newTestRouterWithQueries(t, strategy)
	return r
}

func newTestRouterWithQueries(t *testing.T, strategy auth.Strategy) (*gin.Engine, *queries.Queries) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.OpenSQL(context.Background(), "sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", 1)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	a, err := auth.New(auth.Config{
		Providers: provider.NewRegistry(stubProvider{}),
		Users:     users.NewService(users.NewGormUserRepository(db)),
		Sessions:  sessions.NewService(sessions.NewSQLRepository(db)),
		Secret:    "handler-secret",
		BaseURL:   "http://localhost:8080",
		Strategy:  strategy,
	})
	require.NoError(t, err)

	q := queries.New(db)
	r := gin.New()
	r.Use(middleware.SessionMiddleware(a))
	h := NewAuthHandler(a, q)
	h.Register(r.Group("/api"))
	r.GET("/api/v1/me", middleware.RequireSession(), h.Me)
	return r, q
}

// browser keeps the cookies a real client would send back
type browser struct {
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func (b *browser) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) signIn(t *testing.T) {
	t.Helper()
	w := b.do(http.MethodGet, "/api/auth/signin?callbackUrl=/chat")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.test", loc.Host)
	assert.Equal(t, "http://localhost:8080/api/auth/callback/stub", loc.Query().Get("redirect_uri"))

	w = b.do(http.MethodGet, "/api/auth/callback/stub?code=ok&state="+url.QueryEscape(loc.Query().Get("state")))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/chat", w.Header().Get("Location"))
	require.Contains(t, b.cookies, "authjs.session-token")
	assert.NotContains(t, b.cookies, "authjs.state")
	assert.NotContains(t, b.cookies, "authjs.pkce.code_verifier")
	assert.NotContains(t, b.cookies, "authjs.callback-url")
}

func TestAuthFlow(t *testing.T) {
	for _, strategy := range []auth.Strategy{auth.StrategyJWT, auth.StrategyDatabase} {
		t.Run(string(strategy), func(t *testing.T) {
			r, q := newTestRouterWithQueries(t, strategy)
			b := &browser{r: r, cookies: map[string]*http.Cookie{}}

			w := b.do(http.MethodGet, "/api/v1/me")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			w = b.do(http.MethodGet, "/api/auth/session")
			assert.JSONEq(t, `{}`, w.Body.String())

			b.signIn(t)

			w = b.do(http.MethodGet, "/api/auth/session")
			require.Equal(t, http.StatusOK, w.Code)
			var sess struct {
				User struct {
					ID    string `json:"id"`
					Name  string `json:"name"`
					Email string `json:"email"`
				} `json:"user"`
				Expires string `json:"expires"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
			assert.NotEmpty(t, sess.User.ID)
			assert.Equal(t, "alice@example.com", sess.User.Email)
			assert.NotEmpty(t, sess.Expires)

			_, err := q.SaveChat(context.Background(), queries.SaveChatParams{ID: uuid.NewString(), UserID: sess.User.ID, Title: "first"})
			require.NoError(t, err)

			w = b.do(http.MethodGet, "/api/v1/me")
			require.Equal(t, http.StatusOK, w.Code)
			var me struct {
				User  auth.User `json:"user"`
				Chats []struct {
					Title  string `json:"title"`
					UserID string `json:"userId"`
				} `json:"chats"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
			assert.Equal(t, sess.User.ID, me.User.ID)
			assert.Equal(t, "Alice", me.User.Name)
			require.Len(t, me.Chats, 1)
			assert.Equal(t, "first", me.Chats[0].Title)
			assert.Equal(t, sess.User.ID, me.Chats[0].UserID)

			w = b.do(http.MethodPost, "/api/auth/signout")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotContains(t, b.cookies, "authjs.session-token")

			w = b.do(http.MethodGet, "/api/v1/me")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCallback_BadState(t *testing.T) {
	b := &browser{r: newTestRouter(t, auth.StrategyJWT), cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodGet, "/api/auth/signin")
	require.Equal(t, http.StatusFound, w.Code)

	w = b.do(http.MethodGet, "/api/auth/callback/stub?code=ok&state=forged")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, b.cookies, "authjs.session-token")
}

func TestCallback_UnverifiedEmailDoesNotTakeOverExistingUser(t *testing.T) {
	r, q := newTestRouterWithQueries(t, auth.StrategyJWT)
	victim, err := q.CreateUser(context.Background(), "alice@example.com", "hunter2")
	require.NoError(t, err)

	b := &browser{r: r, cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodGet, "/api/auth/signin")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	// the stub provider reports alice@example.com without verifying it
	w = b.do(http.MethodGet, "/api/auth/callback/stub?code=ok&state="+url.QueryEscape(loc.Query().Get("state")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, b.cookies, "authjs.session-token")

	w = b.do(http.MethodGet, "/api/v1/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	found, err := q.GetUser(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, victim.ID, found[0].ID)
}

func TestCallback_ExchangeFailure(t *testing.T) {
	b := &browser{r: newTestRouter(t, auth.StrategyJWT), cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodGet, "/api/auth/signin")
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	w = b.do(http.MethodGet, "/api/auth/callback/stub?code=bad&state="+url.QueryEscape(loc.Query().Get("state")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignIn_UnknownProvider(t *testing.T) {
	b := &browser{r: newTestRouter(t, auth.StrategyJWT), cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodGet, "/api/auth/signin?provider=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(http.MethodGet, "/api/auth/callback/nope?code=ok&state=x")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProviders(t *testing.T) {
	b := &browser{r: newTestRouter(t, auth.StrategyJWT), cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodGet, "/api/auth/providers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stub":{"id":"stub","type":"oauth","signinUrl":"/api/auth/signin?provider=stub"}}`, w.Body.String())
}

func TestSignOut_WithoutSession(t *testing.T) {
	b := &browser{r: newTestRouter(t, auth.StrategyDatabase), cookies: map[string]*http.Cookie{}}
	w := b.do(http.MethodPost, "/api/auth/signout")
	assert.Equal(t, http.StatusOK, w.Code)
}
