package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/service"
)

// DashboardController 看板统计与提醒
type DashboardController struct {
	tracker *service.Tracker
}

// NewDashboardController 创建看板控制器
func NewDashboardController(tracker *service.Tracker) *DashboardController {
	return &DashboardController{tracker: tracker}
}

// GetStats 获取看板统计
func (ctl *DashboardController) GetStats(c *gin.Context) {
	analytics := service.ComputeAnalytics(ctl.tracker.List(), ctl.tracker.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analytics,
	})
}

// GetReminders 获取提醒面板
func (ctl *DashboardController) GetReminders(c *gin.Context) {
	reminders := service.ComputeReminders(ctl.tracker.List(), ctl.tracker.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reminders,
	})
}

// GetCalendar 获取未来30天拜访日历
func (ctl *DashboardController) GetCalendar(c *gin.Context) {
	calendar := service.UpcomingCalendar(ctl.tracker.List(), ctl.tracker.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    calendar,
	})
}

// GetNotifications 根据提醒生成待推送消息，granted=false时为空
func (ctl *DashboardController) GetNotifications(c *gin.Context) {
	granted := c.Query("granted") == "true"
	reminders := service.ComputeReminders(ctl.tracker.List(), ctl.tracker.Now())
	notifications := service.BuildNotifications(granted, reminders)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// GetCities 城市列表，供筛选器使用
func (ctl *DashboardController) GetCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service.Cities(ctl.tracker.List()),
	})
}

// GetTags 标签词表，供筛选器使用
func (ctl *DashboardController) GetTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service.AllTags(ctl.tracker.List()),
	})
}
