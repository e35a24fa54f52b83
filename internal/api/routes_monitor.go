package api

import (
	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/handlers"
)

func registerMonitorRoutes(api *gin.RouterGroup, handler *handlers.MonitorHandler) {
	group := api.Group("/monitor")
	{
		group.POST("/run", handler.TriggerRun)
		group.GET("/status", handler.Status)
	}
}
