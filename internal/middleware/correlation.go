// Package middleware contains Gin middleware for the application.
package middleware

import (
	"context"

	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderXCorrelationID is the header key for the correlation ID.
const HeaderXCorrelationID = "X-Correlation-ID"

// CorrelationID stamps every admin request with a correlation ID and
// makes it reachable two ways: gin's per-request store (c.Get, for
// handlers that only have *gin.Context) and c.Request's context.Context
// (for logging.Info/Warn/Error, which read correlation_id off a
// context.Context, not off gin's store — the two are not the same
// carrier, and admin handlers log via c.Request.Context()).
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(HeaderXCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		// Set in header for response
		c.Header(HeaderXCorrelationID, correlationID)

		// Set in gin's per-request store, for handlers reading via c.Get
		c.Set(string(logging.CorrelationIDKey), correlationID)

		// Set in the request's context.Context, for logging.* calls made
		// against c.Request.Context()
		ctx := context.WithValue(c.Request.Context(), logging.CorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(ctx)

		// Pass to next handlers
		c.Next()
	}
}
