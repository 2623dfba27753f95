package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// RequestID takes the caller's X-Request-ID or assigns one, echoes it in the
// response and stores it in the context for the request log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDContextKey, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()
	}
}
