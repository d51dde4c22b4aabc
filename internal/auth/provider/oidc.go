package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const oidcName = "oidc"

// OIDC signs users in against any OpenID Connect issuer (Keycloak, Google, ...).
type OIDC struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewOIDC discovers the issuer configuration and prepares the ID token verifier.
func NewOIDC(ctx context.Context, issuer, clientID, clientSecret string) (*OIDC, error) {
	if issuer == "" || clientID == "" || clientSecret == "" {
		return nil, errors.New("oidc config missing issuer, client id or secret")
	}
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &OIDC{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     p.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: p.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (p *OIDC) Name() string { return oidcName }

func (p *OIDC) AuthCodeURL(state, verifier, redirectURL string) string {
	return p.oauth.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
}

func (p *OIDC) ExchangeCode(ctx context.Context, code, verifier, redirectURL string) (*Identity, error) {
	tok, err := p.oauth.Exchange(ctx, code,
		oauth2.VerifierOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
	if err != nil {
		return nil, fmt.Errorf("oidc token exchange failed: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("oidc token response has no id_token")
	}
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("oidc id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc id_token claims: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("oidc id_token missing sub or email")
	}
	return &Identity{
		Provider:          oidcName,
		ProviderAccountID: claims.Subject,
		Email:             claims.Email,
		EmailVerified:     claims.EmailVerified,
		Name:              claims.Name,
		Image:             claims.Picture,
	}, nil
}
