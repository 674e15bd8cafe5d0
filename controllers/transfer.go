package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/service"
	"github.com/muratkar/tracker_end/utils"
)

// TransferController CSV导入导出
type TransferController struct {
	tracker *service.Tracker
}

// NewTransferController 创建导入导出控制器
func NewTransferController(tracker *service.Tracker) *TransferController {
	return &TransferController{tracker: tracker}
}

// ExportCSV 导出客户集合为CSV下载
func (ctl *TransferController) ExportCSV(c *gin.Context) {
	content, filename := ctl.tracker.ExportCSV()

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// ImportCSV 导入CSV文本并合并到现有集合
// 整体解析失败返回单条用户可读错误，不做部分导入
func (ctl *TransferController) ImportCSV(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	imported, err := ctl.tracker.ImportCSV(req.Content)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imported": imported,
		"message":  "CSV导入完成",
	})
}
