package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jan-server/services/report-api/internal/utils/requestid"
)

const requestIDKey = "request_id"

// RequestID injects an X-Request-ID header when missing and binds it to the
// request context so platform errors can carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(requestid.Header, id)
		}
		c.Writer.Header().Set(requestid.Header, id)
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(requestid.WithValue(c.Request.Context(), id))
		c.Next()
	}
}

// RequestIDFromContext returns the request id stored in the gin context.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
