package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"franklin-api/internal/adapters/primary/http/middleware"
	"franklin-api/internal/core/domain"
	"franklin-api/internal/core/services"
	"franklin-api/internal/testutil"
)

const testWebhookSecret = "hooksecret"

type handlerMocks struct {
	sites  *testutil.MockSiteRepo
	builds *testutil.MockBuildRepo
	users  *testutil.MockUserRepo
	github *testutil.MockGithubClient
	queue  *testutil.MockBuildQueue
}

func newTestRouter(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &handlerMocks{
		sites:  new(testutil.MockSiteRepo),
		builds: new(testutil.MockBuildRepo),
		users:  new(testutil.MockUserRepo),
		github: new(testutil.MockGithubClient),
		queue:  new(testutil.MockBuildQueue),
	}

	userSvc := services.NewUserService(m.users, m.github)
	authSvc := services.NewAuthService(m.users, m.github)
	siteSvc := services.NewSiteService(m.sites, m.github, userSvc)
	buildSvc := services.NewBuildService(m.builds, m.sites, m.users, m.queue, "/var/www")

	h := New(siteSvc, userSvc, authSvc, buildSvc, testWebhookSecret)

	router := gin.New()
	api := router.Group("/v1")
	h.RegisterRoutes(api, middleware.TokenAuth(authSvc))
	return router, m
}

// authenticate registers a logged-in user with the mock repo and returns the
// Authorization header value for it.
func (m *handlerMocks) authenticate() (*domain.User, string) {
	user := &domain.User{ID: uuid.New(), GithubID: 77, Login: "octocat", AccessToken: "gho_token"}
	m.users.On("GetByToken", mock.Anything, user.AccessToken).Return(user, nil)
	return user, "token " + user.AccessToken
}

func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
