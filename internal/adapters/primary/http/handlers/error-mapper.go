package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"franklin-api/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrSiteNotFound),
		errors.Is(err, domain.ErrEnvironmentNotFound),
		errors.Is(err, domain.ErrBuildNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrSiteExists),
		errors.Is(err, domain.ErrEnvironmentExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidSiteName),
		errors.Is(err, domain.ErrInvalidGithubID),
		errors.Is(err, domain.ErrInvalidBuildStatus),
		errors.Is(err, domain.ErrInvalidOAuthCode),
		errors.Is(err, domain.ErrBuildFinished),
		errors.Is(err, domain.ErrSiteInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Permission errors
	case errors.Is(err, domain.ErrRepoAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	// Upstream errors
	case errors.Is(err, domain.ErrGithubRejected):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGithubUnavailable),
		errors.Is(err, domain.ErrQueueFull):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
