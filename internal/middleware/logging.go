package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"verdant/internal/logger"
	"verdant/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging tags each request with an ID and logs method, path,
// status, latency, and client IP on completion. An inbound X-Request-ID
// header is honored so upstream proxies can correlate logs.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
