package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

// MockSiteRepo is a mock of SiteRepository.
type MockSiteRepo struct {
	mock.Mock
}

func (m *MockSiteRepo) Create(ctx context.Context, site *domain.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) GetByGithubID(ctx context.Context, githubID int64) (*domain.Site, error) {
	args := m.Called(ctx, githubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) Update(ctx context.Context, site *domain.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSiteRepo) List(ctx context.Context, filter ports.SiteListFilter) ([]*domain.Site, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Site), args.Int(1), args.Error(2)
}

func (m *MockSiteRepo) CreateEnvironment(ctx context.Context, env *domain.Environment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockSiteRepo) GetEnvironment(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

func (m *MockSiteRepo) ListEnvironments(ctx context.Context, siteID uuid.UUID) ([]*domain.Environment, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Environment), args.Error(1)
}

func (m *MockSiteRepo) UpdateEnvironment(ctx context.Context, env *domain.Environment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

// MockBuildRepo is a mock of BuildRepository.
type MockBuildRepo struct {
	mock.Mock
}

func (m *MockBuildRepo) Create(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Build), args.Error(1)
}

func (m *MockBuildRepo) Update(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Build), args.Int(1), args.Error(2)
}

// MockUserRepo is a mock of UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ReplaceSiteLinks(ctx context.Context, userID uuid.UUID, repoGithubIDs []int64) error {
	args := m.Called(ctx, userID, repoGithubIDs)
	return args.Error(0)
}

func (m *MockUserRepo) HasSiteAccess(ctx context.Context, userID uuid.UUID, siteID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, siteID)
	return args.Bool(0), args.Error(1)
}

// MockGithubClient is a mock of GithubClient.
type MockGithubClient struct {
	mock.Mock
}

func (m *MockGithubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockGithubClient) AuthenticatedUser(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockGithubClient) ListUserRepos(ctx context.Context, token string) ([]*domain.Repo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repo), args.Error(1)
}

func (m *MockGithubClient) CreateWebhook(ctx context.Context, token, owner, name string) (int64, error) {
	args := m.Called(ctx, token, owner, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGithubClient) DeleteWebhook(ctx context.Context, token, owner, name string, hookID int64) error {
	args := m.Called(ctx, token, owner, name, hookID)
	return args.Error(0)
}

func (m *MockGithubClient) CreateDeployKey(ctx context.Context, token, owner, name string) (int64, error) {
	args := m.Called(ctx, token, owner, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGithubClient) DeleteDeployKey(ctx context.Context, token, owner, name string, keyID int64) error {
	args := m.Called(ctx, token, owner, name, keyID)
	return args.Error(0)
}

func (m *MockGithubClient) SiteConfig(ctx context.Context, token, owner, name, ref string) (*domain.SiteConfig, error) {
	args := m.Called(ctx, token, owner, name, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteConfig), args.Error(1)
}

// MockBuildQueue is a mock of BuildQueue.
type MockBuildQueue struct {
	mock.Mock
}

func (m *MockBuildQueue) Enqueue(ctx context.Context, job domain.BuildJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockBuildReporter is a mock of BuildReporter.
type MockBuildReporter struct {
	mock.Mock
}

func (m *MockBuildReporter) ReportStatus(ctx context.Context, buildID uuid.UUID, status domain.BuildStatus, detail string) error {
	args := m.Called(ctx, buildID, status, detail)
	return args.Error(0)
}
