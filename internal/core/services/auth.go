package services

import (
	"context"
	"errors"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type AuthService struct {
	users  ports.UserRepository
	github ports.GithubClient
}

func NewAuthService(users ports.UserRepository, github ports.GithubClient) *AuthService {
	return &AuthService{users: users, github: github}
}

// ExchangeCode trades a GitHub OAuth authorization code for an access token,
// fetches the token's owner and upserts the local user record. The returned
// user carries the token the dashboard authenticates with from then on.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*domain.User, error) {
	if code == "" {
		return nil, domain.ErrInvalidOAuthCode
	}

	token, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	ghUser, err := s.github.AuthenticatedUser(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.users.Upsert(ctx, ghUser)
}

// UserFromToken resolves the user owning an access token.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
