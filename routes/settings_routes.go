package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/controllers"
	"github.com/muratkar/tracker_end/service"
)

// RegisterSettingsRoutes 注册偏好设置路由
func RegisterSettingsRoutes(router *gin.Engine, tracker *service.Tracker) {
	settings := controllers.NewSettingsController(tracker)

	settingsRoutes := router.Group("/api/settings")
	settingsRoutes.GET("/preferences", settings.GetPreferences)
	settingsRoutes.PUT("/preferences", settings.UpdatePreferences)
}
