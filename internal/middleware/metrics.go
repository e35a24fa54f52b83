package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

// Metrics observes per-request latency labelled by method, route template
// and status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		metrics.APILatency.WithLabelValues(
			c.Request.Method,
			routePath(c),
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// routePath prefers the route template over the concrete URL so label and
// rate-limit key cardinality stays bounded.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
