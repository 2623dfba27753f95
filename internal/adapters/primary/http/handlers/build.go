package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/adapters/primary/http/dto"
	"franklin-api/internal/adapters/primary/http/middleware"
	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

// ListBuilds returns build history, optionally scoped to one of the caller's
// sites.
func (h *Handler) ListBuilds(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	// Scope to sites the caller is linked to; a ?repo= filter narrows further.
	filter := ports.BuildListFilter{
		UserID: user.ID,
		Status: domain.BuildStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}
	if repoParam := c.Query("repo"); repoParam != "" {
		githubID, err := strconv.ParseInt(repoParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repo id"})
			return
		}
		site, err := h.siteSvc.Get(c.Request.Context(), user, githubID)
		if err != nil {
			mapDomainError(c, err)
			return
		}
		filter.SiteID = site.ID
	}

	builds, total, err := h.buildSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list builds failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.BuildResponse, 0, len(builds))
	for _, build := range builds {
		items = append(items, dto.ToBuildResponse(build))
	}

	c.JSON(http.StatusOK, dto.ListBuildsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

// UpdateBuildStatus is the callback an external builder posts progress to.
func (h *Handler) UpdateBuildStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	var req dto.UpdateBuildStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.buildSvc.ReportStatus(c.Request.Context(), id, domain.BuildStatus(req.Status), req.Detail); err != nil {
		log.WithError(err).WithField("build", id).Error("update build status failed")
		mapDomainError(c, err)
		return
	}

	build, err := h.buildSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBuildResponse(build))
}
