package models

// CustomerStatus 客户跟进阶段枚举
type CustomerStatus string

const (
	StatusConnectionSent     CustomerStatus = "connection_sent"     // 已发送建联请求
	StatusConnectionAccepted CustomerStatus = "connection_accepted" // 建联请求已通过
	StatusMessageSent        CustomerStatus = "message_sent"        // 已发送消息
	StatusReplied            CustomerStatus = "replied"             // 已获得回复
	StatusVisitRequested     CustomerStatus = "visit_requested"     // 已提出拜访
	StatusVisitPending       CustomerStatus = "visit_pending"       // 拜访待安排
	StatusVisitScheduled     CustomerStatus = "visit_scheduled"     // 拜访已排期
	StatusEmailRedirect      CustomerStatus = "email_redirect"      // 转邮件沟通
	StatusCompleted          CustomerStatus = "completed"           // 已完成
)

// ProgressOrder 阶段推进顺序，用于进度条和响应判定
var ProgressOrder = []CustomerStatus{
	StatusConnectionSent,
	StatusConnectionAccepted,
	StatusMessageSent,
	StatusReplied,
	StatusVisitRequested,
	StatusVisitPending,
	StatusVisitScheduled,
	StatusEmailRedirect,
	StatusCompleted,
}

// StatusLabels 阶段展示名称
var StatusLabels = map[CustomerStatus]string{
	StatusConnectionSent:     "已发送建联请求",
	StatusConnectionAccepted: "建联请求已通过",
	StatusMessageSent:        "已发送消息",
	StatusReplied:            "已获得回复",
	StatusVisitRequested:     "已提出拜访",
	StatusVisitPending:       "拜访待安排",
	StatusVisitScheduled:     "拜访已排期",
	StatusEmailRedirect:      "转邮件沟通",
	StatusCompleted:          "已完成",
}

// StatusIndex 返回阶段在推进顺序中的位置，未知阶段返回-1
func StatusIndex(status CustomerStatus) int {
	for i, s := range ProgressOrder {
		if s == status {
			return i
		}
	}
	return -1
}

// ProgressOf 计算阶段对应的进度比例
func ProgressOf(status CustomerStatus) float64 {
	idx := StatusIndex(status)
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(ProgressOrder)-1)
}

// IsValidStatus 判断阶段值是否合法
func IsValidStatus(value string) bool {
	return StatusIndex(CustomerStatus(value)) >= 0
}

// ResolveStatus 解析阶段值，非法值回退到初始阶段
func ResolveStatus(value string) CustomerStatus {
	if IsValidStatus(value) {
		return CustomerStatus(value)
	}
	return StatusConnectionSent
}

// StatusLabel 返回阶段展示名称，未知阶段原样返回
func StatusLabel(status CustomerStatus) string {
	if label, ok := StatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// Priority 客户优先级枚举
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityLabels 优先级展示名称
var PriorityLabels = map[Priority]string{
	PriorityHigh:   "紧急",
	PriorityMedium: "正常",
	PriorityLow:    "低",
}

// IsValidPriority 判断优先级值是否合法
func IsValidPriority(value string) bool {
	switch Priority(value) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ResolvePriority 解析优先级值，非法值回退为正常
func ResolvePriority(value string) Priority {
	if IsValidPriority(value) {
		return Priority(value)
	}
	return PriorityMedium
}

// PriorityLabel 返回优先级展示名称
func PriorityLabel(level Priority) string {
	if label, ok := PriorityLabels[level]; ok {
		return label
	}
	return string(level)
}

// 活动日志条目类型
const (
	ActivityCreate   = "create"
	ActivityUpdate   = "update"
	ActivityStatus   = "status"
	ActivityPriority = "priority"
	ActivityFollowup = "followup"
)

// 各种请求结构
type (
	// CustomerForm 创建/编辑客户请求
	CustomerForm struct {
		CompanyName    string   `json:"companyName"`
		ContactName    string   `json:"contactName"`
		City           string   `json:"city"`
		Phone          string   `json:"phone"`
		Email          string   `json:"email"`
		Status         string   `json:"status"`
		Priority       string   `json:"priority"`
		ConnectionDate string   `json:"connectionDate"`
		MessageDate    string   `json:"messageDate"`
		VisitDate      string   `json:"visitDate"`
		Notes          string   `json:"notes"`
		Tags           []string `json:"tags"`
	}

	// QuickAddRequest 快速添加客户请求
	QuickAddRequest struct {
		CompanyName string `json:"companyName"`
		ContactName string `json:"contactName"`
		City        string `json:"city"`
		Priority    string `json:"priority"`
	}

	// StatusChangeRequest 阶段变更请求
	StatusChangeRequest struct {
		Status string `json:"status" binding:"required"`
	}

	// PriorityChangeRequest 优先级变更请求
	PriorityChangeRequest struct {
		Priority string `json:"priority" binding:"required"`
	}

	// TagsRequest 添加标签请求
	TagsRequest struct {
		Tags []string `json:"tags" binding:"required"`
	}

	// BatchVisitRequest 批量排期拜访请求
	BatchVisitRequest struct {
		CustomerIDs []int64 `json:"customerIds" binding:"required"`
		VisitDate   string  `json:"visitDate" binding:"required"`
	}

	// ImportRequest CSV导入请求
	ImportRequest struct {
		Content string `json:"content" binding:"required"`
	}

	// PreferencesRequest 界面偏好更新请求
	PreferencesRequest struct {
		DarkMode *bool   `json:"darkMode"`
		ViewMode *string `json:"viewMode"`
	}

	// Preferences 界面偏好
	Preferences struct {
		DarkMode bool   `json:"darkMode"`
		ViewMode string `json:"viewMode"`
	}
)

// 视图模式取值
const (
	ViewModeTable = "table"
	ViewModeCards = "cards"
)

// IsValidViewMode 判断视图模式是否合法
func IsValidViewMode(value string) bool {
	return value == ViewModeTable || value == ViewModeCards
}
