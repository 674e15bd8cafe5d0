package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/controllers"
	"github.com/muratkar/tracker_end/service"
)

// RegisterDashboardRoutes 注册看板与提醒路由
func RegisterDashboardRoutes(router *gin.Engine, tracker *service.Tracker) {
	dashboard := controllers.NewDashboardController(tracker)

	dashboardRoutes := router.Group("/api/dashboard")
	dashboardRoutes.GET("/stats", dashboard.GetStats)
	dashboardRoutes.GET("/reminders", dashboard.GetReminders)
	dashboardRoutes.GET("/calendar", dashboard.GetCalendar)
	dashboardRoutes.GET("/notifications", dashboard.GetNotifications)

	metaRoutes := router.Group("/api/meta")
	metaRoutes.GET("/cities", dashboard.GetCities)
	metaRoutes.GET("/tags", dashboard.GetTags)
}
