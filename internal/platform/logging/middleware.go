package logging

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// UserIDFunc extracts the authenticated user ID from a request, or 0.
type UserIDFunc func(c *gin.Context) uint

// RequestLogger logs one line per request after the handler chain has run.
// 5xx responses log at error level, 4xx at warn, the rest at info.
func RequestLogger(userID UserIDFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		if userID != nil {
			if id := userID(c); id != 0 {
				attrs = append(attrs, "user_id", id)
			}
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("request", attrs...)
		case status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	}
}
