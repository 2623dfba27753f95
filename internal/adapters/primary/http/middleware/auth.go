package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"franklin-api/internal/core/domain"
	"franklin-api/internal/core/services"
)

const userContextKey = "current_user"

// TokenAuth resolves the user from the Authorization header. Both
// "token <t>" (what the dashboard sends) and "Bearer <t>" are accepted.
func TokenAuth(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := parseAuthHeader(c.GetHeader("Authorization"))

		user, err := authSvc.UserFromToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by TokenAuth, or nil on unauthenticated
// routes.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func parseAuthHeader(header string) string {
	for _, prefix := range []string{"token ", "Token ", "Bearer "} {
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	return ""
}
