package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/repository"
	"github.com/muratkar/tracker_end/utils"
)

// Tracker 客户集合的状态容器
// 所有变更都在锁内完成并整体落盘，读取方不会观察到中间状态；
// 落盘失败只记录日志，内存状态仍然是本次会话的权威数据
type Tracker struct {
	mu        sync.Mutex
	customers []models.Customer
	prefs     models.Preferences
	store     repository.KVStore
	now       func() time.Time
}

// NewTracker 创建状态容器并从存储加载快照
func NewTracker(store repository.KVStore) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
		prefs: models.Preferences{ViewMode: models.ViewModeTable},
	}
	t.loadAll()
	return t
}

// SetClock 替换时钟，仅测试使用
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// loadAll 加载客户快照与界面偏好，任一键缺失或损坏都回退默认值
func (t *Tracker) loadAll() {
	ctx := context.Background()
	now := t.now()

	t.customers = []models.Customer{}
	if raw, ok := t.store.Load(ctx, repository.CustomersKey); ok {
		var loaded []models.Customer
		if err := json.Unmarshal(raw, &loaded); err != nil {
			utils.LogError(err, map[string]interface{}{"key": repository.CustomersKey}, "客户快照解析失败，使用空列表")
		} else {
			// 历史数据兜底修正：非法枚举、缺失日志等
			upgraded := false
			for i := range loaded {
				if loaded[i].Normalize(now) {
					upgraded = true
				}
			}
			t.customers = loaded
			if upgraded {
				t.persistLocked(ctx)
			}
		}
	}

	if raw, ok := t.store.Load(ctx, repository.DarkModeKey); ok {
		var dark bool
		if err := json.Unmarshal(raw, &dark); err == nil {
			t.prefs.DarkMode = dark
		}
	}
	if raw, ok := t.store.Load(ctx, repository.ViewModeKey); ok {
		var view string
		if err := json.Unmarshal(raw, &view); err == nil && models.IsValidViewMode(view) {
			t.prefs.ViewMode = view
		}
	}

	utils.LogInfo(map[string]interface{}{"count": len(t.customers)}, "客户快照加载完成")
}

// persistLocked 将客户集合整体落盘，失败不回滚内存状态
// 调用方必须持有锁
func (t *Tracker) persistLocked(ctx context.Context) {
	data, err := json.Marshal(t.customers)
	if err != nil {
		utils.LogError(err, nil, "客户快照序列化失败")
		return
	}
	if err := t.store.Save(ctx, repository.CustomersKey, data); err != nil {
		utils.LogError(err, map[string]interface{}{"key": repository.CustomersKey}, "客户快照写入失败")
	}
}

// saveFlag 持久化单个偏好键，失败同样只记录
func (t *Tracker) saveFlag(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := t.store.Save(context.Background(), key, data); err != nil {
		utils.LogError(err, map[string]interface{}{"key": key}, "偏好写入失败")
	}
}

// List 返回客户列表的拷贝，插入顺序
func (t *Tracker) List() []models.Customer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		out = append(out, c.Clone())
	}
	return out
}

// Get 按ID查找客户
func (t *Tracker) Get(id int64) (models.Customer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.customers {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return models.Customer{}, false
}

// indexOfLocked 返回客户下标，不存在返回-1
func (t *Tracker) indexOfLocked(id int64) int {
	for i := range t.customers {
		if t.customers[i].ID == id {
			return i
		}
	}
	return -1
}

// takenIDsLocked 现有ID集合
func (t *Tracker) takenIDsLocked() map[int64]bool {
	taken := make(map[int64]bool, len(t.customers))
	for _, c := range t.customers {
		taken[c.ID] = true
	}
	return taken
}

// appendLogLocked 追加活动日志并刷新更新时间，目标不存在时静默跳过
func (t *Tracker) appendLogLocked(id int64, entryType, detail string, at time.Time) {
	idx := t.indexOfLocked(id)
	if idx < 0 {
		return
	}
	entry := models.ActivityEntry{Date: at, Type: entryType, Detail: detail}
	t.customers[idx].ActivityLog = append(t.customers[idx].ActivityLog, entry)
	t.customers[idx].UpdatedAt = at
}

// validateRequired 校验必填字段
func validateRequired(companyName, contactName, city string) error {
	if strings.TrimSpace(companyName) == "" ||
		strings.TrimSpace(contactName) == "" ||
		strings.TrimSpace(city) == "" {
		return utils.CreateValidationError("公司名称、联系人和城市为必填项")
	}
	return nil
}

// Create 通过完整表单创建客户
func (t *Tracker) Create(form models.CustomerForm) (models.Customer, error) {
	if err := validateRequired(form.CompanyName, form.ContactName, form.City); err != nil {
		return models.Customer{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	customer := models.Customer{
		ID:             models.NewID(now, t.takenIDsLocked()),
		CompanyName:    form.CompanyName,
		ContactName:    form.ContactName,
		City:           form.City,
		Phone:          form.Phone,
		Email:          form.Email,
		Status:         models.ResolveStatus(form.Status),
		Priority:       models.ResolvePriority(form.Priority),
		ConnectionDate: form.ConnectionDate,
		MessageDate:    form.MessageDate,
		VisitDate:      form.VisitDate,
		Notes:          form.Notes,
		Tags:           models.NormalizeTags(form.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
		ActivityLog: []models.ActivityEntry{
			{Date: now, Type: models.ActivityCreate, Detail: "创建客户记录"},
		},
	}

	t.customers = append(t.customers, customer)
	t.persistLocked(context.Background())
	return customer.Clone(), nil
}

// QuickAdd 快速添加客户，插入到列表头部
func (t *Tracker) QuickAdd(req models.QuickAddRequest) (models.Customer, error) {
	if err := validateRequired(req.CompanyName, req.ContactName, req.City); err != nil {
		return models.Customer{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	customer := models.Customer{
		ID:          models.NewID(now, t.takenIDsLocked()),
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		City:        strings.TrimSpace(req.City),
		Status:      models.StatusConnectionSent,
		Priority:    models.ResolvePriority(req.Priority),
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
		ActivityLog: []models.ActivityEntry{
			{Date: now, Type: models.ActivityCreate, Detail: "快速添加"},
		},
	}

	t.customers = append([]models.Customer{customer}, t.customers...)
	t.persistLocked(context.Background())
	return customer.Clone(), nil
}

// Update 通过编辑表单整体更新客户资料
func (t *Tracker) Update(id int64, form models.CustomerForm) (models.Customer, error) {
	if err := validateRequired(form.CompanyName, form.ContactName, form.City); err != nil {
		return models.Customer{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return models.Customer{}, utils.CreateNotFoundError("客户")
	}

	now := t.now()
	c := &t.customers[idx]
	c.CompanyName = form.CompanyName
	c.ContactName = form.ContactName
	c.City = form.City
	c.Phone = form.Phone
	c.Email = form.Email
	c.Status = models.ResolveStatus(form.Status)
	c.Priority = models.ResolvePriority(form.Priority)
	c.ConnectionDate = form.ConnectionDate
	c.MessageDate = form.MessageDate
	c.VisitDate = form.VisitDate
	c.Notes = form.Notes
	c.Tags = models.NormalizeTags(form.Tags)
	c.UpdatedAt = now

	t.appendLogLocked(id, models.ActivityUpdate, "更新客户资料", now)
	t.persistLocked(context.Background())
	return t.customers[idx].Clone(), nil
}

// Delete 删除客户，直接从集合移除
func (t *Tracker) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return utils.CreateNotFoundError("客户")
	}

	t.customers = append(t.customers[:idx], t.customers[idx+1:]...)
	t.persistLocked(context.Background())
	return nil
}

// SetStatus 变更客户阶段
// 阶段之间允许任意跳转，推进顺序仅用于进度与响应判定；
// 到达特定阶段时自动补填空的日期字段，已有日期不覆盖
func (t *Tracker) SetStatus(id int64, status string) (models.Customer, error) {
	if !models.IsValidStatus(status) {
		return models.Customer{}, utils.CreateBadRequestError("无效的阶段值: " + status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return models.Customer{}, utils.CreateNotFoundError("客户")
	}

	now := t.now()
	today := utils.TodayISO(now)
	newStatus := models.CustomerStatus(status)

	c := &t.customers[idx]
	c.Status = newStatus
	switch newStatus {
	case models.StatusMessageSent:
		if c.MessageDate == "" {
			c.MessageDate = today
		}
	case models.StatusConnectionAccepted:
		if c.ConnectionDate == "" {
			c.ConnectionDate = today
		}
	case models.StatusVisitScheduled:
		if c.VisitDate == "" {
			c.VisitDate = today
		}
	}

	t.appendLogLocked(id, models.ActivityStatus, "阶段变更: "+models.StatusLabel(newStatus), now)
	t.persistLocked(context.Background())
	return t.customers[idx].Clone(), nil
}

// SetPriority 变更客户优先级，与阶段互不影响
func (t *Tracker) SetPriority(id int64, level string) (models.Customer, error) {
	if !models.IsValidPriority(level) {
		return models.Customer{}, utils.CreateBadRequestError("无效的优先级: " + level)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return models.Customer{}, utils.CreateNotFoundError("客户")
	}

	now := t.now()
	t.customers[idx].Priority = models.Priority(level)
	t.appendLogLocked(id, models.ActivityPriority, "优先级调整: "+models.PriorityLabel(models.Priority(level)), now)
	t.persistLocked(context.Background())
	return t.customers[idx].Clone(), nil
}

// AddTags 为客户追加标签，空白与重复标签自动忽略
func (t *Tracker) AddTags(id int64, tags []string) (models.Customer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return models.Customer{}, utils.CreateNotFoundError("客户")
	}

	added := []string{}
	for _, tag := range tags {
		if t.customers[idx].AddTag(tag) {
			added = append(added, strings.TrimSpace(tag))
		}
	}

	if len(added) > 0 {
		now := t.now()
		t.appendLogLocked(id, models.ActivityUpdate, "添加标签: "+strings.Join(added, "、"), now)
		t.persistLocked(context.Background())
	}
	return t.customers[idx].Clone(), nil
}

// AcknowledgeFollowup 标记已跟进
func (t *Tracker) AcknowledgeFollowup(id int64) (models.Customer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOfLocked(id)
	if idx < 0 {
		return models.Customer{}, utils.CreateNotFoundError("客户")
	}

	t.appendLogLocked(id, models.ActivityFollowup, "已跟进", t.now())
	t.persistLocked(context.Background())
	return t.customers[idx].Clone(), nil
}

// ScheduleBatchVisit 批量安排拜访
// 日期非法时整体拒绝；成员统一置为拜访已排期并写入拜访日期，各自追加一条阶段日志
func (t *Tracker) ScheduleBatchVisit(ids []int64, date string) (int, error) {
	if _, ok := utils.ParseISODate(date); !ok {
		return 0, utils.CreateBadRequestError("无效的拜访日期: " + date)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	affected := 0
	for _, id := range ids {
		idx := t.indexOfLocked(id)
		if idx < 0 {
			continue
		}
		t.customers[idx].Status = models.StatusVisitScheduled
		t.customers[idx].VisitDate = date
		t.appendLogLocked(id, models.ActivityStatus, "批量排期拜访: "+date, now)
		affected++
	}

	if affected > 0 {
		t.persistLocked(context.Background())
	}
	return affected, nil
}

// ExportCSV 导出客户集合，返回CSV文本和按日期命名的文件名
func (t *Tracker) ExportCSV() (string, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	content := EncodeCSV(t.customers)
	filename := fmt.Sprintf("customers_%s.csv", utils.TodayISO(t.now()))
	return content, filename
}

// ImportCSV 导入CSV文本并合并到现有集合
// 解码出的记录整体追加，ID冲突时换发新ID，现有记录不受影响
func (t *Tracker) ImportCSV(content string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rows, err := DecodeCSV(content, now)
	if err != nil {
		return 0, err
	}

	taken := t.takenIDsLocked()
	for i := range rows {
		if taken[rows[i].ID] {
			rows[i].ID = models.NewID(now, taken)
		}
		taken[rows[i].ID] = true
		t.customers = append(t.customers, rows[i])
	}

	if len(rows) > 0 {
		t.persistLocked(context.Background())
	}

	utils.LogInfo(map[string]interface{}{"imported": len(rows)}, "CSV导入完成")
	return len(rows), nil
}

// Preferences 读取界面偏好
func (t *Tracker) Preferences() models.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prefs
}

// UpdatePreferences 更新界面偏好，逐键独立持久化
func (t *Tracker) UpdatePreferences(req models.PreferencesRequest) (models.Preferences, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if req.ViewMode != nil && !models.IsValidViewMode(*req.ViewMode) {
		return t.prefs, utils.CreateBadRequestError("无效的视图模式: " + *req.ViewMode)
	}

	if req.DarkMode != nil {
		t.prefs.DarkMode = *req.DarkMode
		t.saveFlag(repository.DarkModeKey, t.prefs.DarkMode)
	}
	if req.ViewMode != nil {
		t.prefs.ViewMode = *req.ViewMode
		t.saveFlag(repository.ViewModeKey, t.prefs.ViewMode)
	}
	return t.prefs, nil
}

// Now 返回容器时钟的当前时间，供派生计算使用
func (t *Tracker) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now()
}
