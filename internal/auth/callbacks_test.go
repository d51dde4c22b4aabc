package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
)

func TestDefaultSessionCallback_CopiesSubject(t *testing.T) {
	s := &Session{User: &User{Name: "Ada"}}
	out, err := DefaultSessionCallback(context.Background(), s, &Token{Sub: "u-1"})
	require.NoError(t, err)
	require.Equal(t, "u-1", out.User.ID)
	require.Equal(t, "Ada", out.User.Name)
}

func TestDefaultSessionCallback_WithoutUser(t *testing.T) {
	s := &Session{}
	out, err := DefaultSessionCallback(context.Background(), s, &Token{Sub: "u-1"})
	require.NoError(t, err)
	require.Nil(t, out.User)
}

func TestDefaultJWTCallback(t *testing.T) {
	tok, err := DefaultJWTCallback(context.Background(), &Token{}, &models.User{ID: "u-2"})
	require.NoError(t, err)
	require.Equal(t, "u-2", tok.Sub)

	// later reads carry no user and keep the subject
	tok, err = DefaultJWTCallback(context.Background(), tok, nil)
	require.NoError(t, err)
	require.Equal(t, "u-2", tok.Sub)
}
