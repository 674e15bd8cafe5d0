package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/service"
	"github.com/muratkar/tracker_end/utils"
)

// SettingsController 界面偏好设置
type SettingsController struct {
	tracker *service.Tracker
}

// NewSettingsController 创建设置控制器
func NewSettingsController(tracker *service.Tracker) *SettingsController {
	return &SettingsController{tracker: tracker}
}

// GetPreferences 获取界面偏好
func (ctl *SettingsController) GetPreferences(c *gin.Context) {
	utils.SuccessResponse(c, ctl.tracker.Preferences(), "")
}

// UpdatePreferences 更新界面偏好
func (ctl *SettingsController) UpdatePreferences(c *gin.Context) {
	var req models.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	prefs, err := ctl.tracker.UpdatePreferences(req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, prefs, "偏好已保存")
}
