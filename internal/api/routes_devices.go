package api

import (
	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/handlers"
)

func registerDeviceRoutes(api *gin.RouterGroup, handler *handlers.DevicesHandler) {
	group := api.Group("/users/:userID/devices")
	{
		group.POST("", handler.Register)
		group.GET("", handler.List)
	}

	// Tokens are globally unique, so removal does not need the user scope.
	api.DELETE("/devices/:token", handler.Remove)
}
