package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 进度比例必须随阶段推进严格递增，首尾分别为0和1
func TestProgressOfMonotonic(t *testing.T) {
	require.Equal(t, 0.0, ProgressOf(ProgressOrder[0]))
	require.Equal(t, 1.0, ProgressOf(ProgressOrder[len(ProgressOrder)-1]))

	for i := 1; i < len(ProgressOrder); i++ {
		assert.Greater(t, ProgressOf(ProgressOrder[i]), ProgressOf(ProgressOrder[i-1]),
			"阶段 %s 的进度应大于 %s", ProgressOrder[i], ProgressOrder[i-1])
	}
}

func TestProgressOfUnknownStatus(t *testing.T) {
	assert.Equal(t, 0.0, ProgressOf(CustomerStatus("legacy_value")))
	assert.Equal(t, -1, StatusIndex(CustomerStatus("")))
}

// 非法优先级值读取时一律回退为正常
func TestResolvePriorityFallback(t *testing.T) {
	assert.Equal(t, PriorityHigh, ResolvePriority("high"))
	assert.Equal(t, PriorityMedium, ResolvePriority("urgent"))
	assert.Equal(t, PriorityMedium, ResolvePriority(""))
	assert.Equal(t, PriorityLow, ResolvePriority("low"))
}

func TestResolveStatusFallback(t *testing.T) {
	assert.Equal(t, StatusReplied, ResolveStatus("replied"))
	assert.Equal(t, StatusConnectionSent, ResolveStatus("no_such_stage"))
	assert.Equal(t, StatusConnectionSent, ResolveStatus(""))
}

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{" 重点 ", "", "重点", "  ", "华东", "华东", "新客户"})
	assert.Equal(t, []string{"重点", "华东", "新客户"}, tags)
}

// 追加空白或重复标签不应改变标签数量
func TestAddTagRejectsBlankAndDuplicate(t *testing.T) {
	c := Customer{Tags: []string{"华东"}}

	assert.False(t, c.AddTag("   "))
	assert.False(t, c.AddTag("华东"))
	assert.Len(t, c.Tags, 1)

	assert.True(t, c.AddTag(" 重点 "))
	assert.Equal(t, []string{"华东", "重点"}, c.Tags)
}

// 读取边界的兜底修正：非法枚举、缺失日志和时间戳
func TestCustomerNormalize(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	c := Customer{
		ID:       1,
		Status:   CustomerStatus("weird"),
		Priority: Priority("urgent"),
		Tags:     []string{" a ", "a", ""},
	}

	changed := c.Normalize(now)
	require.True(t, changed)
	assert.Equal(t, StatusConnectionSent, c.Status)
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.Equal(t, []string{"a"}, c.Tags)
	assert.NotNil(t, c.ActivityLog)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)

	// 已规范的数据不应再次标记修正
	assert.False(t, c.Normalize(now))
}

func TestNewIDAvoidsCollision(t *testing.T) {
	now := time.Now()
	taken := map[int64]bool{}
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		id := NewID(now, taken)
		assert.False(t, seen[id], "生成的ID不应重复")
		seen[id] = true
		taken[id] = true
	}
}
