package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rusith21/Autism-parent-app/internal/platform/ctxutil"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

// Probe and scrape endpoints fire every few seconds; logging their
// successes would drown the real traffic.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// RequestLogger writes one access-log line per request, levelled by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routePath(c)
		status := c.Writer.Status()
		if quietPaths[route] && status < 400 {
			return
		}

		emit := log.Info
		if status >= 500 {
			emit = log.Error
		} else if status >= 400 {
			emit = log.Warn
		}
		emit("request completed",
			"method", c.Request.Method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes_out", c.Writer.Size(),
			"trace_id", ctxutil.TraceID(c.Request.Context()),
			"request_id", ctxutil.RequestID(c.Request.Context()),
		)
	}
}

// routePath prefers the registered route pattern so 404s and parameterised
// paths do not fan out log cardinality.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
