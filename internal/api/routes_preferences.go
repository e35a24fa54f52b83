package api

import (
	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/handlers"
)

func registerPreferenceRoutes(api *gin.RouterGroup, handler *handlers.PreferencesHandler) {
	group := api.Group("/users/:userID/preferences")
	{
		group.GET("", handler.Get)
		group.PUT("", handler.Update)
	}
}
