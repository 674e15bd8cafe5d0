package utils

import (
	"time"
)

// DateLayout 日期字段的存储格式
const DateLayout = "2006-01-02"

// TodayISO 返回指定时刻对应的日期字符串
func TodayISO(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// ParseISODate 解析日期字符串，兼容带时间的格式
func ParseISODate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DaysSince 计算距今天数，时间缺失时返回 false
func DaysSince(now, then time.Time) (int, bool) {
	if then.IsZero() {
		return 0, false
	}
	diff := now.Sub(then)
	days := int(diff.Milliseconds() / 86400000)
	// 向下取整，负数时间差需要额外处理
	if diff < 0 && diff.Milliseconds()%86400000 != 0 {
		days--
	}
	return days, true
}

// AddDaysISO 日期字符串加上指定天数
func AddDaysISO(value string, days int) (string, bool) {
	t, ok := ParseISODate(value)
	if !ok {
		return "", false
	}
	return t.AddDate(0, 0, days).Format(DateLayout), true
}
