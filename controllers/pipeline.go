package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/service"
	"github.com/muratkar/tracker_end/utils"
)

// PipelineController 阶段推进与跟进操作
type PipelineController struct {
	tracker *service.Tracker
}

// NewPipelineController 创建流程控制器
func NewPipelineController(tracker *service.Tracker) *PipelineController {
	return &PipelineController{tracker: tracker}
}

// ChangeStatus 变更客户阶段
func (ctl *PipelineController) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.SetStatus(id, req.Status)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     customer,
		"progress": models.ProgressOf(customer.Status),
	})
}

// ChangePriority 变更客户优先级
func (ctl *PipelineController) ChangePriority(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.PriorityChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.SetPriority(id, req.Priority)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "优先级已更新")
}

// AcknowledgeFollowup 标记客户已跟进
func (ctl *PipelineController) AcknowledgeFollowup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, err := ctl.tracker.AcknowledgeFollowup(id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "已记录跟进")
}

// ScheduleBatchVisit 批量安排拜访
func (ctl *PipelineController) ScheduleBatchVisit(c *gin.Context) {
	var req models.BatchVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	affected, err := ctl.tracker.ScheduleBatchVisit(req.CustomerIDs, req.VisitDate)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"visitDate": req.VisitDate,
		"affected":  affected,
	}, "批量排期拜访完成")

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"affected": affected,
	})
}
