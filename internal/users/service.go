package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumen-chat/lumen/backend/go-services/internal/auth/provider"
	"github.com/lumen-chat/lumen/backend/go-services/internal/models"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// ErrAccountNotLinked is returned when a sign-in carries the email of an
// existing user but the provider did not verify that email.
var ErrAccountNotLinked = errors.New("account not linked: email is not verified by the provider")

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Resolve maps a provider identity to a local user. An existing account link
// wins; otherwise the identity is linked to the user with the same email when
// the provider verified it, or a new user is created together with the link.
func (s *Service) Resolve(ctx context.Context, id *provider.Identity) (*models.User, error) {
	if id == nil || id.Provider == "" || id.ProviderAccountID == "" {
		return nil, errors.New("identity missing provider or account id")
	}

	u, err := s.repo.GetByAccount(ctx, id.Provider, id.ProviderAccountID)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if u != nil {
		return u, nil
	}

	acct := &models.Account{
		Type:              "oauth",
		Provider:          id.Provider,
		ProviderAccountID: id.ProviderAccountID,
	}

	if id.Email != "" {
		u, err = s.repo.GetByEmail(ctx, id.Email)
		if err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		if u != nil {
			if !id.EmailVerified {
				logger.Warnf("refused to link unverified %s account to existing user %s", id.Provider, u.ID)
				return nil, ErrAccountNotLinked
			}
			acct.UserID = u.ID
			if err := s.repo.LinkAccount(ctx, acct); err != nil {
				return nil, fmt.Errorf("link account: %w", err)
			}
			logger.Infof("linked %s account to existing user %s", id.Provider, u.ID)
			return u, nil
		}
	}

	u = &models.User{
		Email: id.Email,
		Name:  id.Name,
		Image: id.Image,
	}
	if id.EmailVerified {
		now := time.Now().UTC()
		u.EmailVerified = &now
	}
	if err := s.repo.CreateWithAccount(ctx, u, acct); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Infof("created user %s from %s sign-in", u.ID, id.Provider)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
