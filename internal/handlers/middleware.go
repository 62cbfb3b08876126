package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger emits one structured line per request. Swagger and the
// websocket stream are skipped to keep the log readable.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/ws" || len(path) >= 8 && path[:8] == "/swagger" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if h.log != nil {
			h.log.Infow("http_request",
				"method", c.Request.Method,
				"path", path,
				"status", c.Writer.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}
