package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/app"
	"github.com/riverwatchhq/riverwatch/internal/health"
)

// Health endpoints are registered twice, at the root for infrastructure
// probes and under /api for clients of the versioned surface.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, manager *health.Manager) {
	if cfg == nil {
		return
	}

	routers := []gin.IRouter{r, r.Group("/api")}

	if !cfg.Monitoring.Health.Enabled || manager == nil {
		for _, router := range routers {
			router.GET("/health", disabledHealthHandler)
			router.GET("/health/live", disabledHealthHandler)
			router.GET("/health/ready", disabledHealthHandler)
		}
		return
	}

	for _, router := range routers {
		router.GET("/health", healthHandler(manager.EvaluateReadiness, false))
		router.GET("/health/live", healthHandler(manager.EvaluateLiveness, true))
		router.GET("/health/ready", healthHandler(manager.EvaluateReadiness, true))
	}
}

// healthHandler renders the report produced by evaluate. The summary endpoint
// leaves out per-check detail; live and ready include it.
func healthHandler(evaluate func(context.Context) health.Report, includeChecks bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := evaluate(c.Request.Context())

		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		}
		if includeChecks {
			body["checks"] = report.Checks
		}
		c.JSON(status, body)
	}
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
