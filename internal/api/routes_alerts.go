package api

import (
	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/handlers"
)

func registerAlertRoutes(api *gin.RouterGroup, handler *handlers.AlertsHandler) {
	group := api.Group("/users/:userID/alerts")
	{
		group.GET("", handler.List)
		group.GET("/:alertID", handler.Get)
	}
}
