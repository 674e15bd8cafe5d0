package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/service"
	"github.com/muratkar/tracker_end/utils"
)

// CustomerController 客户增删改查
type CustomerController struct {
	tracker *service.Tracker
}

// NewCustomerController 创建客户控制器
func NewCustomerController(tracker *service.Tracker) *CustomerController {
	return &CustomerController{tracker: tracker}
}

// parseID 解析路径中的客户ID
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的客户ID"))
		return 0, false
	}
	return id, true
}

// GetCustomerList 获取客户列表，支持关键字与多条件筛选
func (ctl *CustomerController) GetCustomerList(c *gin.Context) {
	opts := service.FilterOptions{
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
		City:     c.Query("city"),
		Tag:      c.Query("tag"),
		Priority: c.Query("priority"),
	}

	customers := service.FilterCustomers(ctl.tracker.List(), opts)

	utils.LogInfo(map[string]interface{}{
		"keyword":  opts.Keyword,
		"status":   opts.Status,
		"city":     opts.City,
		"tag":      opts.Tag,
		"priority": opts.Priority,
		"count":    len(customers),
	}, "获取客户列表")

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     len(customers),
	})
}

// GetCustomerDetail 获取客户详情，附带进度与同城拜访机会
func (ctl *CustomerController) GetCustomerDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, found := ctl.tracker.Get(id)
	if !found {
		utils.HandleError(c, utils.CreateNotFoundError("客户"))
		return
	}

	overlap := service.SameCityOverlap(ctl.tracker.List(), customer.City, customer.ID)

	c.JSON(http.StatusOK, gin.H{
		"customer":        customer,
		"progress":        models.ProgressOf(customer.Status),
		"sameCityOverlap": overlap,
	})
}

// CreateCustomer 创建客户
func (ctl *CustomerController) CreateCustomer(c *gin.Context) {
	var form models.CustomerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.Create(form)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "客户创建成功", http.StatusCreated)
}

// QuickAddCustomer 快速添加客户
func (ctl *CustomerController) QuickAddCustomer(c *gin.Context) {
	var req models.QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.QuickAdd(req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "客户已加入列表", http.StatusCreated)
}

// UpdateCustomer 更新客户资料
func (ctl *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var form models.CustomerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.Update(id, form)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "客户更新成功")
}

// DeleteCustomer 删除客户
func (ctl *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := ctl.tracker.Delete(id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, "客户已删除")
}

// AddCustomerTags 为客户追加标签
func (ctl *CustomerController) AddCustomerTags(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据"))
		return
	}

	customer, err := ctl.tracker.AddTags(id, req.Tags)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, customer, "标签已更新")
}
