// Package provider contains the OAuth identity providers a user can sign in with.
// Providers only report identity facts; linking and sessions happen in the caller.
package provider

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// Identity is a normalized view of the account at the provider.
type Identity struct {
	Provider          string
	ProviderAccountID string
	Email             string
	EmailVerified     bool
	Name              string
	Image             string
}

// OAuthProvider is implemented by every sign-in provider. redirectURL must be the
// same for AuthCodeURL and ExchangeCode of one sign-in attempt.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state, verifier, redirectURL string) string
	ExchangeCode(ctx context.Context, code, verifier, redirectURL string) (*Identity, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]OAuthProvider
	order     []string
}

func NewRegistry(list ...OAuthProvider) *Registry {
	r := &Registry{providers: make(map[string]OAuthProvider)}
	for _, p := range list {
		if _, dup := r.providers[p.Name()]; !dup {
			r.order = append(r.order, p.Name())
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
