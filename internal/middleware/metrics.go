package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
)

// Metrics records every request under its route pattern (not the raw path,
// to keep label cardinality bounded).
func Metrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
