package services

import (
	"context"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type UserService struct {
	users  ports.UserRepository
	github ports.GithubClient
}

func NewUserService(users ports.UserRepository, github ports.GithubClient) *UserService {
	return &UserService{users: users, github: github}
}

// RefreshSiteLinks pulls the user's repositories from GitHub and rebuilds the
// user's access links to registered sites from them.
func (s *UserService) RefreshSiteLinks(ctx context.Context, user *domain.User) ([]*domain.Repo, error) {
	repos, err := s.github.ListUserRepos(ctx, user.AccessToken)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(repos))
	for _, r := range repos {
		ids = append(ids, r.GithubID)
	}
	if err := s.users.ReplaceSiteLinks(ctx, user.ID, ids); err != nil {
		return nil, err
	}
	return repos, nil
}

// DeployableRepos returns the repositories the user can register with
// Franklin: those where the user has admin permission.
func (s *UserService) DeployableRepos(ctx context.Context, user *domain.User) ([]*domain.Repo, error) {
	repos, err := s.RefreshSiteLinks(ctx, user)
	if err != nil {
		return nil, err
	}

	deployable := make([]*domain.Repo, 0, len(repos))
	for _, r := range repos {
		if r.Admin {
			deployable = append(deployable, r)
		}
	}
	return deployable, nil
}

func (s *UserService) HasSiteAccess(ctx context.Context, user *domain.User, site *domain.Site) (bool, error) {
	return s.users.HasSiteAccess(ctx, user.ID, site.ID)
}
