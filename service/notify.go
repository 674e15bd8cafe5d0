package service

import "fmt"

// Notification 提醒消息
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BuildNotifications 根据提醒面板生成待推送消息
// 未授权或各项均为空时返回空列表，推送本身尽力而为，不影响引擎状态
func BuildNotifications(granted bool, reminders Reminders) []Notification {
	out := []Notification{}
	if !granted {
		return out
	}
	if n := len(reminders.MessageDue); n > 0 {
		out = append(out, Notification{
			Title: "发送消息提醒",
			Body:  fmt.Sprintf("有 %d 位客户今天应当发送消息", n),
		})
	}
	if n := len(reminders.VisitsToday); n > 0 {
		out = append(out, Notification{
			Title: "今日拜访",
			Body:  fmt.Sprintf("今天安排了 %d 场拜访", n),
		})
	}
	if n := len(reminders.FollowupsDue); n > 0 {
		out = append(out, Notification{
			Title: "跟进提醒",
			Body:  fmt.Sprintf("有 %d 位客户到了跟进时间", n),
		})
	}
	return out
}
