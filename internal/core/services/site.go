package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type SiteService struct {
	sites   ports.SiteRepository
	github  ports.GithubClient
	userSvc *UserService
}

func NewSiteService(sites ports.SiteRepository, github ports.GithubClient, userSvc *UserService) *SiteService {
	return &SiteService{sites: sites, github: github, userSvc: userSvc}
}

// Register puts a repository under Franklin management: it persists the site
// with a production environment, then installs the webhook and deploy key on
// GitHub. If the GitHub side cannot be completed the registration is rolled
// back.
func (s *SiteService) Register(ctx context.Context, user *domain.User, githubID int64, name string, owner domain.Owner, defaultBranch string) (*domain.Site, error) {
	if name == "" || owner.Login == "" {
		return nil, domain.ErrInvalidSiteName
	}
	if githubID == 0 {
		return nil, domain.ErrInvalidGithubID
	}

	if _, err := s.sites.GetByGithubID(ctx, githubID); err == nil {
		return nil, domain.ErrSiteExists
	} else if !errors.Is(err, domain.ErrSiteNotFound) {
		return nil, err
	}

	repos, err := s.userSvc.RefreshSiteLinks(ctx, user)
	if err != nil {
		return nil, err
	}
	if !hasAdminRepo(repos, githubID) {
		log.WithFields(log.Fields{"user": user.Login, "repo": owner.Login + "/" + name}).
			Warn("registration refused: no admin permission")
		return nil, domain.ErrRepoAccessDenied
	}

	if defaultBranch == "" {
		defaultBranch = "main"
	}
	now := time.Now()
	site := &domain.Site{
		ID:            uuid.New(),
		GithubID:      githubID,
		Owner:         owner,
		Name:          name,
		DefaultBranch: defaultBranch,
		Active:        true,
		RegisteredBy:  user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sites.Create(ctx, site); err != nil {
		return nil, err
	}

	env := &domain.Environment{
		ID:        uuid.New(),
		SiteID:    site.ID,
		Name:      domain.ProductionEnvironment,
		Strategy:  domain.DeployOnBranch,
		Branch:    defaultBranch,
		Status:    domain.EnvironmentStatusRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sites.CreateEnvironment(ctx, env); err != nil {
		s.rollbackRegistration(ctx, user, site)
		return nil, err
	}

	// Per-repo build settings are optional; a parse failure should not block
	// registration.
	if _, err := s.github.SiteConfig(ctx, user.AccessToken, owner.Login, name, ""); err != nil &&
		!errors.Is(err, domain.ErrConfigNotFound) {
		log.WithError(err).WithField("repo", site.FullName()).
			Warn("site config not usable, continuing with defaults")
	}

	hookID, err := s.github.CreateWebhook(ctx, user.AccessToken, owner.Login, name)
	if err != nil {
		s.rollbackRegistration(ctx, user, site)
		return nil, err
	}
	site.WebhookID = hookID

	keyID, err := s.github.CreateDeployKey(ctx, user.AccessToken, owner.Login, name)
	if err != nil {
		if derr := s.github.DeleteWebhook(ctx, user.AccessToken, owner.Login, name, hookID); derr != nil {
			log.WithError(derr).WithField("repo", site.FullName()).
				Warn("webhook cleanup failed during rollback")
		}
		s.rollbackRegistration(ctx, user, site)
		return nil, err
	}
	site.DeployKeyID = keyID

	if err := s.sites.Update(ctx, site); err != nil {
		if derr := s.github.DeleteDeployKey(ctx, user.AccessToken, owner.Login, name, keyID); derr != nil {
			log.WithError(derr).WithField("repo", site.FullName()).
				Warn("deploy key cleanup failed during rollback")
		}
		if derr := s.github.DeleteWebhook(ctx, user.AccessToken, owner.Login, name, hookID); derr != nil {
			log.WithError(derr).WithField("repo", site.FullName()).
				Warn("webhook cleanup failed during rollback")
		}
		s.rollbackRegistration(ctx, user, site)
		return nil, err
	}

	// The new site exists now; rebuild the links so the registering user sees
	// it immediately.
	if _, err := s.userSvc.RefreshSiteLinks(ctx, user); err != nil {
		log.WithError(err).WithField("user", user.Login).Warn("site link refresh failed")
	}

	return s.sites.GetByID(ctx, site.ID)
}

func (s *SiteService) rollbackRegistration(ctx context.Context, user *domain.User, site *domain.Site) {
	if err := s.sites.Delete(ctx, site.ID); err != nil {
		log.WithError(err).WithField("repo", site.FullName()).
			Error("site rollback failed")
	}
}

func hasAdminRepo(repos []*domain.Repo, githubID int64) bool {
	for _, r := range repos {
		if r.GithubID == githubID && r.Admin {
			return true
		}
	}
	return false
}

// Get returns a site by repository GitHub id, enforcing the caller's access.
func (s *SiteService) Get(ctx context.Context, user *domain.User, githubID int64) (*domain.Site, error) {
	site, err := s.sites.GetByGithubID(ctx, githubID)
	if err != nil {
		return nil, err
	}
	ok, err := s.userSvc.HasSiteAccess(ctx, user, site)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRepoAccessDenied
	}
	return site, nil
}

// Environments returns the deploy targets of a site.
func (s *SiteService) Environments(ctx context.Context, site *domain.Site) ([]*domain.Environment, error) {
	return s.sites.ListEnvironments(ctx, site.ID)
}

// ListForUser returns the active sites the user can manage. A user seen for
// the first time has no links yet, so an empty result triggers a sync with
// GitHub before giving up.
func (s *SiteService) ListForUser(ctx context.Context, user *domain.User, limit, offset int) ([]*domain.Site, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	active := true
	filter := ports.SiteListFilter{UserID: user.ID, Active: &active, Limit: limit, Offset: offset}

	sites, total, err := s.sites.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		if _, err := s.userSvc.RefreshSiteLinks(ctx, user); err != nil {
			log.WithError(err).WithField("user", user.Login).Warn("site link refresh failed")
			return sites, total, nil
		}
		return s.sites.List(ctx, filter)
	}
	return sites, total, nil
}

// Remove deactivates the site, removes the webhook and deploy key from
// GitHub, and deletes the record. The site is deactivated first so a partial
// failure never leaves it deployable.
func (s *SiteService) Remove(ctx context.Context, user *domain.User, githubID int64) error {
	site, err := s.Get(ctx, user, githubID)
	if err != nil {
		return err
	}

	site.Active = false
	if err := s.sites.Update(ctx, site); err != nil {
		return err
	}

	if err := s.github.DeleteWebhook(ctx, user.AccessToken, site.Owner.Login, site.Name, site.WebhookID); err != nil {
		return err
	}
	if err := s.github.DeleteDeployKey(ctx, user.AccessToken, site.Owner.Login, site.Name, site.DeployKeyID); err != nil {
		log.WithError(err).WithFields(log.Fields{"user": user.Login, "repo": site.FullName()}).
			Warn("github deleted the webhook, but not the deploy key")
		return err
	}

	return s.sites.Delete(ctx, site.ID)
}
