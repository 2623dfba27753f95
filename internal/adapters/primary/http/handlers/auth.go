package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/adapters/primary/http/dto"
)

// GetAuthToken exchanges a GitHub OAuth authorization code for an access
// token the dashboard uses on subsequent requests.
func (h *Handler) GetAuthToken(c *gin.Context) {
	log.Info("received token request from dashboard")

	var req dto.AuthTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		log.WithError(err).Warn("oauth code exchange failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAuthTokenResponse(user))
}
