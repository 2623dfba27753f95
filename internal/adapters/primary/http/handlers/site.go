package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/adapters/primary/http/dto"
	"franklin-api/internal/adapters/primary/http/middleware"
	"franklin-api/internal/core/domain"
)

// ListDeployedRepos returns the active sites the caller can manage.
func (h *Handler) ListDeployedRepos(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sites, total, err := h.siteSvc.ListForUser(c.Request.Context(), user, limit, offset)
	if err != nil {
		log.WithError(err).Error("list sites failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.SiteResponse, 0, len(sites))
	for _, site := range sites {
		items = append(items, dto.ToSiteResponse(site, nil))
	}

	c.JSON(http.StatusOK, dto.ListSitesResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

// RegisterRepo puts a repository under Franklin management.
func (h *Handler) RegisterRepo(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.RegisterSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := domain.Owner{GithubID: req.Owner.ID, Login: req.Owner.Name}
	site, err := h.siteSvc.Register(c.Request.Context(), user, req.GithubID, req.Name, owner, req.DefaultBranch)
	if err != nil {
		log.WithError(err).WithField("repo", owner.Login+"/"+req.Name).Error("register site failed")
		mapDomainError(c, err)
		return
	}

	envs, err := h.siteSvc.Environments(c.Request.Context(), site)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSiteResponse(site, envs))
}

// GetDeployedRepo returns one site by repository GitHub id.
func (h *Handler) GetDeployedRepo(c *gin.Context) {
	user := middleware.CurrentUser(c)

	githubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repo id"})
		return
	}

	site, err := h.siteSvc.Get(c.Request.Context(), user, githubID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	envs, err := h.siteSvc.Environments(c.Request.Context(), site)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSiteResponse(site, envs))
}

// RemoveDeployedRepo takes a site out of Franklin management.
func (h *Handler) RemoveDeployedRepo(c *gin.Context) {
	user := middleware.CurrentUser(c)

	githubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repo id"})
		return
	}

	if err := h.siteSvc.Remove(c.Request.Context(), user, githubID); err != nil {
		log.WithError(err).WithField("repo_github_id", githubID).Error("remove site failed")
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeployableRepos lists the GitHub repositories the caller could register.
func (h *Handler) DeployableRepos(c *gin.Context) {
	user := middleware.CurrentUser(c)

	repos, err := h.userSvc.DeployableRepos(c.Request.Context(), user)
	if err != nil {
		log.WithError(err).WithField("user", user.Login).Error("list deployable repos failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.RepoResponse, 0, len(repos))
	for _, repo := range repos {
		items = append(items, dto.ToRepoResponse(repo))
	}
	c.JSON(http.StatusOK, items)
}
