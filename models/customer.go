package models

import (
	"math/rand"
	"strings"
	"time"
)

// ActivityEntry 活动日志条目，追加后不可修改
type ActivityEntry struct {
	Date   time.Time `json:"date" bson:"date"`
	Type   string    `json:"type" bson:"type"`
	Detail string    `json:"detail" bson:"detail"`
}

// Customer 客户模型
type Customer struct {
	ID             int64           `json:"id" bson:"id"`
	CompanyName    string          `json:"companyName" bson:"companyName"`
	ContactName    string          `json:"contactName" bson:"contactName"`
	City           string          `json:"city" bson:"city"`
	Phone          string          `json:"phone" bson:"phone"`
	Email          string          `json:"email" bson:"email"`
	Status         CustomerStatus  `json:"status" bson:"status"`
	Priority       Priority        `json:"priority" bson:"priority"`
	ConnectionDate string          `json:"connectionDate" bson:"connectionDate"`
	MessageDate    string          `json:"messageDate" bson:"messageDate"`
	VisitDate      string          `json:"visitDate" bson:"visitDate"`
	Notes          string          `json:"notes" bson:"notes"`
	Tags           []string        `json:"tags" bson:"tags"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
	ActivityLog    []ActivityEntry `json:"activityLog" bson:"activityLog"`
}

// NormalizeTags 清洗标签：去空白、去重，保留首次出现顺序
func NormalizeTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}

// AddTag 向客户追加标签，空白或重复标签不生效
func (c *Customer) AddTag(tag string) bool {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return false
	}
	for _, existing := range c.Tags {
		if existing == trimmed {
			return false
		}
	}
	c.Tags = append(c.Tags, trimmed)
	return true
}

// Normalize 读取边界的容错处理：非法枚举回退默认值、标签清洗、日志补空
// 返回是否发生了修正
func (c *Customer) Normalize(now time.Time) bool {
	changed := false

	if resolved := ResolveStatus(string(c.Status)); resolved != c.Status {
		c.Status = resolved
		changed = true
	}
	if resolved := ResolvePriority(string(c.Priority)); resolved != c.Priority {
		c.Priority = resolved
		changed = true
	}

	cleaned := NormalizeTags(c.Tags)
	if len(cleaned) != len(c.Tags) {
		changed = true
	} else {
		for i := range cleaned {
			if cleaned[i] != c.Tags[i] {
				changed = true
				break
			}
		}
	}
	c.Tags = cleaned

	if c.ActivityLog == nil {
		c.ActivityLog = []ActivityEntry{}
		changed = true
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
		changed = true
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
		changed = true
	}

	return changed
}

// Clone 返回客户的深拷贝，避免调用方持有内部切片
func (c Customer) Clone() Customer {
	clone := c
	clone.Tags = append([]string(nil), c.Tags...)
	clone.ActivityLog = append([]ActivityEntry(nil), c.ActivityLog...)
	return clone
}

// NewID 生成不与现有ID冲突的客户ID
// 以毫秒时间戳为基数附加随机尾数，仿照前端 Date.now()+random 的生成方式
func NewID(now time.Time, taken map[int64]bool) int64 {
	for {
		id := now.UnixMilli()*1000 + rand.Int63n(1000)
		if !taken[id] {
			return id
		}
		// 冲突时向后借位重试
		now = now.Add(time.Millisecond)
	}
}
