package handlers

import (
	"github.com/gin-gonic/gin"

	"franklin-api/internal/core/services"
)

type Handler struct {
	siteSvc  *services.SiteService
	userSvc  *services.UserService
	authSvc  *services.AuthService
	buildSvc *services.BuildService

	webhookSecret []byte
}

func New(
	siteSvc *services.SiteService,
	userSvc *services.UserService,
	authSvc *services.AuthService,
	buildSvc *services.BuildService,
	webhookSecret string,
) *Handler {
	return &Handler{
		siteSvc:       siteSvc,
		userSvc:       userSvc,
		authSvc:       authSvc,
		buildSvc:      buildSvc,
		webhookSecret: []byte(webhookSecret),
	}
}

// RegisterRoutes wires the API. auth guards the user-facing routes; the
// webhook and the builder callback authenticate differently (HMAC signature
// and deployment-network trust respectively).
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	// Public
	r.POST("/auth/github", h.GetAuthToken)
	r.POST("/deployed", h.DeployHook)
	r.POST("/builds/:id/update", h.UpdateBuildStatus)

	// Token-authenticated
	user := r.Group("", auth)
	user.GET("/user/repos/deployed", h.ListDeployedRepos)
	user.POST("/user/repos/deployed", h.RegisterRepo)
	user.GET("/user/repos/deployed/:id", h.GetDeployedRepo)
	user.DELETE("/user/repos/deployed/:id", h.RemoveDeployedRepo)
	user.GET("/user/repos/deployable", h.DeployableRepos)
	user.GET("/builds", h.ListBuilds)
}
