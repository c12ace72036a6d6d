package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the correlation ID on requests and responses.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey stores the correlation ID in the gin context.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags each request with a correlation ID, honoring one supplied
// by the caller and minting a fresh UUID otherwise. The ID is echoed back on
// the response so clients can quote it when reporting a problem.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation ID, or an empty string
// when the middleware has not run.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}
