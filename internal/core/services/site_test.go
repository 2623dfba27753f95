package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
	"franklin-api/internal/testutil"
)

func newSiteServiceUnderTest() (*SiteService, *testutil.MockSiteRepo, *testutil.MockUserRepo, *testutil.MockGithubClient) {
	sites := new(testutil.MockSiteRepo)
	users := new(testutil.MockUserRepo)
	github := new(testutil.MockGithubClient)
	svc := NewSiteService(sites, github, NewUserService(users, github))
	return svc, sites, users, github
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), GithubID: 77, Login: "octocat", AccessToken: "gho_token"}
}

func adminRepo(githubID int64) *domain.Repo {
	return &domain.Repo{GithubID: githubID, Name: "blog", FullName: "octocat/blog",
		Owner: domain.Owner{GithubID: 77, Login: "octocat"}, DefaultBranch: "main", Admin: true}
}

func TestRegisterSite(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()
	owner := domain.Owner{GithubID: 77, Login: "octocat"}

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound).Once()
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{adminRepo(42)}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	var created *domain.Site
	var env *domain.Environment
	sites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Site")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Site) }).Return(nil)
	sites.On("CreateEnvironment", mock.Anything, mock.AnythingOfType("*domain.Environment")).
		Run(func(args mock.Arguments) { env = args.Get(1).(*domain.Environment) }).Return(nil)
	github.On("SiteConfig", mock.Anything, user.AccessToken, "octocat", "blog", "").
		Return(nil, domain.ErrConfigNotFound)
	github.On("CreateWebhook", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(900), nil)
	github.On("CreateDeployKey", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(800), nil)
	sites.On("Update", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	sites.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Site{GithubID: 42, Owner: owner, Name: "blog", Active: true, WebhookID: 900, DeployKeyID: 800}, nil)

	site, err := svc.Register(context.Background(), user, 42, "blog", owner, "main")

	require.NoError(t, err)
	assert.Equal(t, int64(900), site.WebhookID)
	assert.Equal(t, int64(800), site.DeployKeyID)
	sites.AssertExpectations(t)
	github.AssertExpectations(t)

	require.NotNil(t, created)
	assert.True(t, created.Active)
	assert.Equal(t, user.ID, created.RegisteredBy)

	require.NotNil(t, env)
	assert.Equal(t, domain.ProductionEnvironment, env.Name)
	assert.Equal(t, domain.DeployOnBranch, env.Strategy)
	assert.Equal(t, "main", env.Branch)
}

func TestRegisterSiteAlreadyExists(t *testing.T) {
	svc, sites, _, _ := newSiteServiceUnderTest()

	sites.On("GetByGithubID", mock.Anything, int64(42)).
		Return(&domain.Site{GithubID: 42}, nil)

	_, err := svc.Register(context.Background(), testUser(), 42, "blog", domain.Owner{GithubID: 77, Login: "octocat"}, "main")

	assert.ErrorIs(t, err, domain.ErrSiteExists)
	sites.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterSiteWithoutAdminPermission(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)
	repo := adminRepo(42)
	repo.Admin = false
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{repo}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)

	_, err := svc.Register(context.Background(), user, 42, "blog", domain.Owner{GithubID: 77, Login: "octocat"}, "main")

	assert.ErrorIs(t, err, domain.ErrRepoAccessDenied)
	sites.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterSiteInvalidInput(t *testing.T) {
	svc, _, _, _ := newSiteServiceUnderTest()
	owner := domain.Owner{GithubID: 77, Login: "octocat"}

	_, err := svc.Register(context.Background(), testUser(), 42, "", owner, "main")
	assert.ErrorIs(t, err, domain.ErrInvalidSiteName)

	_, err = svc.Register(context.Background(), testUser(), 0, "blog", owner, "main")
	assert.ErrorIs(t, err, domain.ErrInvalidGithubID)
}

func TestRegisterSiteRollsBackOnWebhookFailure(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{adminRepo(42)}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	sites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	sites.On("CreateEnvironment", mock.Anything, mock.AnythingOfType("*domain.Environment")).Return(nil)
	github.On("SiteConfig", mock.Anything, user.AccessToken, "octocat", "blog", "").
		Return(nil, domain.ErrConfigNotFound)
	github.On("CreateWebhook", mock.Anything, user.AccessToken, "octocat", "blog").
		Return(int64(0), domain.ErrGithubRejected)
	sites.On("Delete", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	_, err := svc.Register(context.Background(), user, 42, "blog", domain.Owner{GithubID: 77, Login: "octocat"}, "main")

	assert.ErrorIs(t, err, domain.ErrGithubRejected)
	sites.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("uuid.UUID"))
}

func TestRegisterSiteRemovesWebhookOnDeployKeyFailure(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{adminRepo(42)}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	sites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	sites.On("CreateEnvironment", mock.Anything, mock.AnythingOfType("*domain.Environment")).Return(nil)
	github.On("SiteConfig", mock.Anything, user.AccessToken, "octocat", "blog", "").
		Return(nil, domain.ErrConfigNotFound)
	github.On("CreateWebhook", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(900), nil)
	github.On("CreateDeployKey", mock.Anything, user.AccessToken, "octocat", "blog").
		Return(int64(0), domain.ErrGithubRejected)
	github.On("DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900)).Return(nil)
	sites.On("Delete", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	_, err := svc.Register(context.Background(), user, 42, "blog", domain.Owner{GithubID: 77, Login: "octocat"}, "main")

	assert.ErrorIs(t, err, domain.ErrGithubRejected)
	github.AssertCalled(t, "DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900))
	sites.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("uuid.UUID"))
}

func TestRegisterSiteRollsBackOnPersistFailure(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{adminRepo(42)}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	sites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	sites.On("CreateEnvironment", mock.Anything, mock.AnythingOfType("*domain.Environment")).Return(nil)
	github.On("SiteConfig", mock.Anything, user.AccessToken, "octocat", "blog", "").
		Return(nil, domain.ErrConfigNotFound)
	github.On("CreateWebhook", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(900), nil)
	github.On("CreateDeployKey", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(800), nil)

	persistErr := errors.New("connection reset")
	sites.On("Update", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(persistErr)
	github.On("DeleteDeployKey", mock.Anything, user.AccessToken, "octocat", "blog", int64(800)).Return(nil)
	github.On("DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900)).Return(nil)
	sites.On("Delete", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	_, err := svc.Register(context.Background(), user, 42, "blog", domain.Owner{GithubID: 77, Login: "octocat"}, "main")

	assert.ErrorIs(t, err, persistErr)
	github.AssertCalled(t, "DeleteDeployKey", mock.Anything, user.AccessToken, "octocat", "blog", int64(800))
	github.AssertCalled(t, "DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900))
	sites.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("uuid.UUID"))
}

func TestGetSiteEnforcesAccess(t *testing.T) {
	svc, sites, users, _ := newSiteServiceUnderTest()
	user := testUser()
	site := &domain.Site{ID: uuid.New(), GithubID: 42}

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(false, nil)

	_, err := svc.Get(context.Background(), user, 42)

	assert.ErrorIs(t, err, domain.ErrRepoAccessDenied)
}

func TestListForUserSyncsWhenEmpty(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()
	site := &domain.Site{ID: uuid.New(), GithubID: 42, Active: true}

	sites.On("List", mock.Anything, mock.AnythingOfType("ports.SiteListFilter")).
		Return([]*domain.Site{}, 0, nil).Once()
	github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{adminRepo(42)}, nil)
	users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	sites.On("List", mock.Anything, mock.AnythingOfType("ports.SiteListFilter")).
		Return([]*domain.Site{site}, 1, nil).Once()

	got, total, err := svc.ListForUser(context.Background(), user, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, got, 1)
	sites.AssertExpectations(t)
}

func TestListForUserClampsLimit(t *testing.T) {
	svc, sites, _, _ := newSiteServiceUnderTest()
	user := testUser()

	sites.On("List", mock.Anything, mock.MatchedBy(func(f ports.SiteListFilter) bool {
		return f.Limit == 100
	})).Return([]*domain.Site{{}}, 1, nil)

	_, _, err := svc.ListForUser(context.Background(), user, 5000, 0)

	require.NoError(t, err)
	sites.AssertExpectations(t)
}

func TestRemoveSiteDeactivatesFirst(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()
	site := &domain.Site{ID: uuid.New(), GithubID: 42, Owner: domain.Owner{Login: "octocat"},
		Name: "blog", Active: true, WebhookID: 900, DeployKeyID: 800}

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(true, nil)
	sites.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Site) bool {
		return !s.Active
	})).Return(nil)
	github.On("DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900)).Return(nil)
	github.On("DeleteDeployKey", mock.Anything, user.AccessToken, "octocat", "blog", int64(800)).Return(nil)
	sites.On("Delete", mock.Anything, site.ID).Return(nil)

	err := svc.Remove(context.Background(), user, 42)

	require.NoError(t, err)
	sites.AssertExpectations(t)
	github.AssertExpectations(t)
}

func TestRemoveSiteKeepsRecordWhenGithubFails(t *testing.T) {
	svc, sites, users, github := newSiteServiceUnderTest()
	user := testUser()
	site := &domain.Site{ID: uuid.New(), GithubID: 42, Owner: domain.Owner{Login: "octocat"},
		Name: "blog", Active: true, WebhookID: 900}

	sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(true, nil)
	sites.On("Update", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	github.On("DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900)).
		Return(domain.ErrGithubUnavailable)

	err := svc.Remove(context.Background(), user, 42)

	assert.ErrorIs(t, err, domain.ErrGithubUnavailable)
	sites.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
