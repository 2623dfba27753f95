// Package ports declares the output ports of the core services: storage,
// the GitHub API and the build queue. Adapters implement these.
package ports

import (
	"context"

	"github.com/google/uuid"

	"franklin-api/internal/core/domain"
)

// SiteListFilter scopes and pages site listings.
type SiteListFilter struct {
	UserID uuid.UUID // only sites linked to this user, uuid.Nil for all
	Active *bool
	Limit  int
	Offset int
}

type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error)
	GetByGithubID(ctx context.Context, githubID int64) (*domain.Site, error)
	Update(ctx context.Context, site *domain.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter SiteListFilter) ([]*domain.Site, int, error)

	CreateEnvironment(ctx context.Context, env *domain.Environment) error
	GetEnvironment(ctx context.Context, id uuid.UUID) (*domain.Environment, error)
	ListEnvironments(ctx context.Context, siteID uuid.UUID) ([]*domain.Environment, error)
	UpdateEnvironment(ctx context.Context, env *domain.Environment) error
}

// BuildListFilter scopes and pages build listings.
type BuildListFilter struct {
	UserID        uuid.UUID // only builds of sites linked to this user, uuid.Nil for all
	SiteID        uuid.UUID
	EnvironmentID uuid.UUID
	Status        domain.BuildStatus
	Limit         int
	Offset        int
}

type BuildRepository interface {
	Create(ctx context.Context, build *domain.Build) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error)
	Update(ctx context.Context, build *domain.Build) error
	List(ctx context.Context, filter BuildListFilter) ([]*domain.Build, int, error)
}

type UserRepository interface {
	// Upsert inserts the user or, when the GitHub id is already known,
	// refreshes login, profile fields and the access token.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)

	// ReplaceSiteLinks rebuilds the user's site access links from the set of
	// repository GitHub ids the user can administer.
	ReplaceSiteLinks(ctx context.Context, userID uuid.UUID, repoGithubIDs []int64) error
	HasSiteAccess(ctx context.Context, userID uuid.UUID, siteID uuid.UUID) (bool, error)
}
