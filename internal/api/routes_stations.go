package api

import (
	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/handlers"
)

func registerStationRoutes(api *gin.RouterGroup, handler *handlers.StationsHandler) {
	group := api.Group("/stations")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Upsert)
	}
}
