package ports

import (
	"context"

	"franklin-api/internal/core/domain"
)

// GithubClient is the GitHub surface the core needs. The concrete adapter
// wraps go-github; this interface keeps services and tests decoupled from it.
type GithubClient interface {
	// ExchangeCode trades an OAuth authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// AuthenticatedUser fetches the profile of the token's owner.
	AuthenticatedUser(ctx context.Context, token string) (*domain.User, error)

	// ListUserRepos returns every repository visible to the token, following
	// pagination.
	ListUserRepos(ctx context.Context, token string) ([]*domain.Repo, error)

	// CreateWebhook installs Franklin's push webhook on the repository and
	// returns the hook id. An already-installed hook is not an error.
	CreateWebhook(ctx context.Context, token, owner, name string) (int64, error)
	DeleteWebhook(ctx context.Context, token, owner, name string, hookID int64) error

	// CreateDeployKey installs Franklin's read-only deploy key and returns
	// the key id. An already-installed key is not an error.
	CreateDeployKey(ctx context.Context, token, owner, name string) (int64, error)
	DeleteDeployKey(ctx context.Context, token, owner, name string, keyID int64) error

	// SiteConfig fetches and parses .franklin.yml at the given ref.
	// Returns domain.ErrConfigNotFound when the repo has none.
	SiteConfig(ctx context.Context, token, owner, name, ref string) (*domain.SiteConfig, error)
}
