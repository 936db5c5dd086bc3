package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/logger"
)

// LoggerMiddleware attaches log to the request context and logs each
// completed request.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), reqLog))
		c.Next()
		status := c.Writer.Status()
		fields := []any{
			"status_code", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "error", errs)
		}
		if status >= 500 {
			reqLog.Error("Request completed", fields...)
			return
		}
		reqLog.Debug("Request completed", fields...)
	}
}
