package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/controllers"
	"github.com/muratkar/tracker_end/service"
)

// RegisterCustomerRoutes 注册客户相关路由
func RegisterCustomerRoutes(router *gin.Engine, tracker *service.Tracker) {
	customer := controllers.NewCustomerController(tracker)
	pipeline := controllers.NewPipelineController(tracker)
	transfer := controllers.NewTransferController(tracker)

	customerRoutes := router.Group("/api/customers")

	customerRoutes.GET("", customer.GetCustomerList)
	customerRoutes.POST("", customer.CreateCustomer)
	customerRoutes.POST("/quick", customer.QuickAddCustomer)
	customerRoutes.POST("/batch-visit", pipeline.ScheduleBatchVisit)
	customerRoutes.GET("/export", transfer.ExportCSV)
	customerRoutes.POST("/import", transfer.ImportCSV)
	customerRoutes.GET("/:id", customer.GetCustomerDetail)
	customerRoutes.PUT("/:id", customer.UpdateCustomer)
	customerRoutes.DELETE("/:id", customer.DeleteCustomer)
	customerRoutes.POST("/:id/status", pipeline.ChangeStatus)
	customerRoutes.POST("/:id/priority", pipeline.ChangePriority)
	customerRoutes.POST("/:id/tags", customer.AddCustomerTags)
	customerRoutes.POST("/:id/followup", pipeline.AcknowledgeFollowup)
}
