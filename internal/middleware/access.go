package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"study-plan/internal/logger"
)

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Error("http.request", args...)
		case status >= 400:
			logger.Warn("http.request", args...)
		default:
			logger.Info("http.request", args...)
		}
	}
}
