package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type BuildService struct {
	builds   ports.BuildRepository
	sites    ports.SiteRepository
	users    ports.UserRepository
	queue    ports.BuildQueue
	basePath string
}

func NewBuildService(builds ports.BuildRepository, sites ports.SiteRepository, users ports.UserRepository, queue ports.BuildQueue, basePath string) *BuildService {
	return &BuildService{
		builds:   builds,
		sites:    sites,
		users:    users,
		queue:    queue,
		basePath: basePath,
	}
}

// HandleWebhookEvent resolves a push or tag-create delivery to a build.
// Returns (nil, nil) when the event belongs to a known site but matches no
// environment; that is a delivery we simply don't build for.
func (s *BuildService) HandleWebhookEvent(ctx context.Context, ev *domain.WebhookEvent) (*domain.Build, error) {
	site, err := s.sites.GetByGithubID(ctx, ev.RepoGithubID)
	if err != nil {
		return nil, err
	}
	if !site.Active {
		return nil, domain.ErrSiteInactive
	}

	envs, err := s.sites.ListEnvironments(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	env := domain.DeployableEnvironment(envs, ev)
	if env == nil {
		log.WithFields(log.Fields{
			"repo":   site.FullName(),
			"branch": ev.Branch,
			"tag":    ev.Tag,
		}).Debug("webhook event matches no environment")
		return nil, nil
	}

	return s.Trigger(ctx, site, env, ev)
}

// Trigger records a pending build and hands it to the build queue.
func (s *BuildService) Trigger(ctx context.Context, site *domain.Site, env *domain.Environment, ev *domain.WebhookEvent) (*domain.Build, error) {
	registrar, err := s.users.GetByID(ctx, site.RegisteredBy)
	if err != nil {
		return nil, fmt.Errorf("load registering user: %w", err)
	}

	build := &domain.Build{
		ID:            uuid.New(),
		SiteID:        site.ID,
		EnvironmentID: env.ID,
		Branch:        ev.Branch,
		Tag:           ev.Tag,
		GitHash:       ev.SHA,
		Path:          filepath.Join(site.Path(s.basePath), env.Name),
		Status:        domain.BuildStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.builds.Create(ctx, build); err != nil {
		return nil, err
	}

	ref := "refs/heads/" + ev.Branch
	if ev.IsTag() {
		ref = "refs/tags/" + ev.Tag
	}
	job := domain.BuildJob{
		BuildID:     build.ID,
		SiteID:      site.ID,
		Environment: env.Name,
		CloneURL:    "https://github.com/" + site.FullName() + ".git",
		Ref:         ref,
		GitHash:     ev.SHA,
		Token:       registrar.AccessToken,
		PublishPath: build.Path,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		now := time.Now()
		build.Status = domain.BuildStatusFailed
		build.Detail = err.Error()
		build.FinishedAt = &now
		if uerr := s.builds.Update(ctx, build); uerr != nil {
			log.WithError(uerr).WithField("build", build.ID).Error("mark build failed")
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"repo":  site.FullName(),
		"env":   env.Name,
		"hash":  ev.SHA,
		"build": build.ID,
	}).Info("build queued")
	return build, nil
}

// ReportStatus implements ports.BuildReporter. It advances the build through
// its lifecycle and keeps the environment's status and current build in step.
func (s *BuildService) ReportStatus(ctx context.Context, buildID uuid.UUID, status domain.BuildStatus, detail string) error {
	if !status.Valid() {
		return domain.ErrInvalidBuildStatus
	}

	build, err := s.builds.GetByID(ctx, buildID)
	if err != nil {
		return err
	}
	if build.Status.Terminal() {
		return domain.ErrBuildFinished
	}

	now := time.Now()
	build.Status = status
	build.Detail = detail
	if status == domain.BuildStatusBuilding && build.StartedAt == nil {
		build.StartedAt = &now
	}
	if status.Terminal() {
		build.FinishedAt = &now
	}
	if err := s.builds.Update(ctx, build); err != nil {
		return err
	}

	env, err := s.sites.GetEnvironment(ctx, build.EnvironmentID)
	if err != nil {
		return err
	}
	switch status {
	case domain.BuildStatusBuilding:
		env.Status = domain.EnvironmentStatusBuilding
	case domain.BuildStatusSucceeded:
		env.Status = domain.EnvironmentStatusDeployed
		env.CurrentBuildID = &build.ID
	case domain.BuildStatusFailed, domain.BuildStatusCancelled:
		env.Status = domain.EnvironmentStatusFailed
	default:
		return nil
	}
	return s.sites.UpdateEnvironment(ctx, env)
}

func (s *BuildService) Get(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	return s.builds.GetByID(ctx, id)
}

func (s *BuildService) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.builds.List(ctx, filter)
}
