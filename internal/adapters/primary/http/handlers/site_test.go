package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"franklin-api/internal/adapters/primary/http/dto"
	"franklin-api/internal/core/domain"
)

func activeSite(registrar uuid.UUID) *domain.Site {
	return &domain.Site{
		ID:            uuid.New(),
		GithubID:      42,
		Owner:         domain.Owner{GithubID: 77, Login: "octocat"},
		Name:          "blog",
		DefaultBranch: "main",
		Active:        true,
		WebhookID:     900,
		DeployKeyID:   800,
		RegisteredBy:  registrar,
	}
}

func TestListDeployedRepos(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()

	m.sites.On("List", mock.Anything, mock.Anything).
		Return([]*domain.Site{activeSite(user.ID)}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployed", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListSitesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "octocat/blog", resp.Items[0].FullName)
	assert.Equal(t, 1, resp.Total)
}

func TestListDeployedReposUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployed", nil)
	w := perform(router, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRepo(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()
	site := activeSite(user.ID)

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)
	m.github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{
		{GithubID: 42, Name: "blog", Owner: domain.Owner{GithubID: 77, Login: "octocat"}, Admin: true},
	}, nil)
	m.users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{42}).Return(nil)
	m.sites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	m.sites.On("CreateEnvironment", mock.Anything, mock.AnythingOfType("*domain.Environment")).Return(nil)
	m.github.On("SiteConfig", mock.Anything, user.AccessToken, "octocat", "blog", "").
		Return(nil, domain.ErrConfigNotFound)
	m.github.On("CreateWebhook", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(900), nil)
	m.github.On("CreateDeployKey", mock.Anything, user.AccessToken, "octocat", "blog").Return(int64(800), nil)
	m.sites.On("Update", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	m.sites.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(site, nil)
	m.sites.On("ListEnvironments", mock.Anything, site.ID).Return([]*domain.Environment{
		{ID: uuid.New(), SiteID: site.ID, Name: "production", Strategy: domain.DeployOnBranch,
			Branch: "main", Status: domain.EnvironmentStatusRegistered},
	}, nil)

	body, _ := json.Marshal(dto.RegisterSiteRequest{
		Name:     "blog",
		GithubID: 42,
		Owner:    dto.OwnerPayload{ID: 77, Name: "octocat"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/user/repos/deployed", bytes.NewReader(body))
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Content-Type", "application/json")
	w := perform(router, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.SiteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "octocat/blog", resp.FullName)
	require.Len(t, resp.Environments, 1)
	assert.Equal(t, "production", resp.Environments[0].Name)
}

func TestRegisterRepoConflict(t *testing.T) {
	router, m := newTestRouter(t)
	_, authHeader := m.authenticate()

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(activeSite(uuid.New()), nil)

	body, _ := json.Marshal(dto.RegisterSiteRequest{
		Name:     "blog",
		GithubID: 42,
		Owner:    dto.OwnerPayload{ID: 77, Name: "octocat"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/user/repos/deployed", bytes.NewReader(body))
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Content-Type", "application/json")
	w := perform(router, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRepoMissingFields(t *testing.T) {
	router, m := newTestRouter(t)
	_, authHeader := m.authenticate()

	req := httptest.NewRequest(http.MethodPost, "/v1/user/repos/deployed", bytes.NewReader([]byte(`{"name":"blog"}`)))
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Content-Type", "application/json")
	w := perform(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDeployedRepo(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()
	site := activeSite(user.ID)

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	m.users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(true, nil)
	m.sites.On("ListEnvironments", mock.Anything, site.ID).Return([]*domain.Environment{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployed/42", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.SiteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.GithubID)
}

func TestGetDeployedRepoForbidden(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()
	site := activeSite(uuid.New())

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	m.users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(false, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployed/42", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetDeployedRepoNotFound(t *testing.T) {
	router, m := newTestRouter(t)
	_, authHeader := m.authenticate()

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(nil, domain.ErrSiteNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployed/42", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveDeployedRepo(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()
	site := activeSite(user.ID)

	m.sites.On("GetByGithubID", mock.Anything, int64(42)).Return(site, nil)
	m.users.On("HasSiteAccess", mock.Anything, user.ID, site.ID).Return(true, nil)
	m.sites.On("Update", mock.Anything, mock.AnythingOfType("*domain.Site")).Return(nil)
	m.github.On("DeleteWebhook", mock.Anything, user.AccessToken, "octocat", "blog", int64(900)).Return(nil)
	m.github.On("DeleteDeployKey", mock.Anything, user.AccessToken, "octocat", "blog", int64(800)).Return(nil)
	m.sites.On("Delete", mock.Anything, site.ID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/user/repos/deployed/42", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	m.sites.AssertExpectations(t)
}

func TestDeployableRepos(t *testing.T) {
	router, m := newTestRouter(t)
	user, authHeader := m.authenticate()

	m.github.On("ListUserRepos", mock.Anything, user.AccessToken).Return([]*domain.Repo{
		{GithubID: 1, Name: "blog", FullName: "octocat/blog",
			Owner: domain.Owner{GithubID: 77, Login: "octocat"}, Admin: true},
		{GithubID: 2, Name: "upstream-fork", FullName: "octocat/upstream-fork",
			Owner: domain.Owner{GithubID: 77, Login: "octocat"}},
	}, nil)
	m.users.On("ReplaceSiteLinks", mock.Anything, user.ID, []int64{1, 2}).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/user/repos/deployable", nil)
	req.Header.Set("Authorization", authHeader)
	w := perform(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []dto.RepoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "octocat/blog", resp[0].FullName)
}
