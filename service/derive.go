package service

import (
	"sort"
	"strings"
	"time"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/utils"
)

// 本文件是派生视图的计算层：全部为纯函数，基于传入的客户列表即时计算，
// 不持有状态，集合变化后由调用方重新计算

// FilterOptions 列表筛选条件，各条件之间取与
type FilterOptions struct {
	Keyword  string
	Status   string
	City     string
	Tag      string
	Priority string
}

// FilterCustomers 按条件过滤客户列表
func FilterCustomers(customers []models.Customer, opts FilterOptions) []models.Customer {
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if keyword != "" {
			haystack := []string{c.CompanyName, c.ContactName, c.City, c.Notes, strings.Join(c.Tags, " ")}
			matched := false
			for _, field := range haystack {
				if field != "" && strings.Contains(strings.ToLower(field), keyword) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if opts.Status != "" && string(c.Status) != opts.Status {
			continue
		}
		if opts.City != "" && c.City != opts.City {
			continue
		}
		if opts.Tag != "" && !containsTag(c.Tags, opts.Tag) {
			continue
		}
		if opts.Priority != "" && string(c.Priority) != opts.Priority {
			continue
		}
		out = append(out, c)
	}
	return out
}

// containsTag 判断标签是否存在（区分大小写）
func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Analytics 看板统计
type Analytics struct {
	Total              int `json:"total"`
	Completed          int `json:"completed"`
	Active             int `json:"active"`
	Responded          int `json:"responded"`
	ResponseRate       int `json:"responseRate"`
	ConversionRate     int `json:"conversionRate"`
	HighPriorityTotal  int `json:"highPriorityTotal"`
	HighPriorityOpen   int `json:"highPriorityOpen"`
	ScheduledVisits    int `json:"scheduledVisits"`
	UpcomingWeekVisits int `json:"upcomingWeekVisits"`
}

// ComputeAnalytics 计算看板统计
func ComputeAnalytics(customers []models.Customer, now time.Time) Analytics {
	a := Analytics{Total: len(customers)}
	repliedIndex := models.StatusIndex(models.StatusReplied)

	for _, c := range customers {
		if c.Status == models.StatusCompleted {
			a.Completed++
		}
		if models.StatusIndex(c.Status) >= repliedIndex {
			a.Responded++
		}
		if c.Priority == models.PriorityHigh {
			a.HighPriorityTotal++
			if c.Status != models.StatusCompleted {
				a.HighPriorityOpen++
			}
		}
		if c.Status == models.StatusVisitScheduled {
			a.ScheduledVisits++
		}
		if visit, ok := utils.ParseISODate(c.VisitDate); ok {
			// 按日期比较，当天的拜访也算在未来一周内
			if today, ok := utils.ParseISODate(utils.TodayISO(now)); ok {
				diff := visit.Sub(today)
				if diff >= 0 && diff <= 7*24*time.Hour {
					a.UpcomingWeekVisits++
				}
			}
		}
	}

	a.Active = a.Total - a.Completed
	if a.Total > 0 {
		a.ResponseRate = int(float64(a.Responded)/float64(a.Total)*100 + 0.5)
		a.ConversionRate = int(float64(a.Completed)/float64(a.Total)*100 + 0.5)
	}
	return a
}

// MessageDue 建联通过次日应当发送消息的客户
func MessageDue(customers []models.Customer, now time.Time) []models.Customer {
	today := utils.TodayISO(now)
	out := []models.Customer{}
	for _, c := range customers {
		if c.Status != models.StatusConnectionAccepted || c.MessageDate != "" {
			continue
		}
		if next, ok := utils.AddDaysISO(c.ConnectionDate, 1); ok && next == today {
			out = append(out, c)
		}
	}
	return out
}

// VisitsToday 今日拜访的客户
func VisitsToday(customers []models.Customer, now time.Time) []models.Customer {
	today := utils.TodayISO(now)
	out := []models.Customer{}
	for _, c := range customers {
		if c.VisitDate == today {
			out = append(out, c)
		}
	}
	return out
}

// FollowupsDue 消息发出满7天应当跟进的客户
func FollowupsDue(customers []models.Customer, now time.Time) []models.Customer {
	today := utils.TodayISO(now)
	out := []models.Customer{}
	for _, c := range customers {
		if c.Status != models.StatusMessageSent || c.MessageDate == "" {
			continue
		}
		if next, ok := utils.AddDaysISO(c.MessageDate, 7); ok && next == today {
			out = append(out, c)
		}
	}
	return out
}

// RankedCustomer 带停滞天数的客户条目
type RankedCustomer struct {
	Customer models.Customer `json:"customer"`
	Days     int             `json:"days"`
}

// idleDays 距上次更新的天数，时间缺失时按0处理
func idleDays(c models.Customer, now time.Time) int {
	reference := c.UpdatedAt
	if reference.IsZero() {
		reference = c.CreatedAt
	}
	days, ok := utils.DaysSince(now, reference)
	if !ok {
		return 0
	}
	return days
}

// StaleCustomers 超过10天未更新的未完成客户，按停滞天数降序取前5
func StaleCustomers(customers []models.Customer, now time.Time) []RankedCustomer {
	ranked := []RankedCustomer{}
	for _, c := range customers {
		if c.Status == models.StatusCompleted {
			continue
		}
		days := idleDays(c, now)
		if days >= 10 {
			ranked = append(ranked, RankedCustomer{Customer: c, Days: days})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Days > ranked[j].Days
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	return ranked
}

// HighPriorityFocus 未完成的紧急客户，按停滞天数降序取前5
func HighPriorityFocus(customers []models.Customer, now time.Time) []RankedCustomer {
	ranked := []RankedCustomer{}
	for _, c := range customers {
		if c.Priority != models.PriorityHigh || c.Status == models.StatusCompleted {
			continue
		}
		ranked = append(ranked, RankedCustomer{Customer: c, Days: idleDays(c, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Days > ranked[j].Days
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	return ranked
}

// UnknownCityBucket 城市缺失时的分组名
const UnknownCityBucket = "未知"

// CityGroup 按城市分组的客户
type CityGroup struct {
	City      string            `json:"city"`
	Customers []models.Customer `json:"customers"`
}

// PendingByCity 拜访待安排的客户按城市分组，分组顺序为首次出现顺序
func PendingByCity(customers []models.Customer) []CityGroup {
	groups := []CityGroup{}
	index := map[string]int{}
	for _, c := range customers {
		if c.Status != models.StatusVisitPending {
			continue
		}
		city := c.City
		if city == "" {
			city = UnknownCityBucket
		}
		pos, ok := index[city]
		if !ok {
			pos = len(groups)
			index[city] = pos
			groups = append(groups, CityGroup{City: city})
		}
		groups[pos].Customers = append(groups[pos].Customers, c)
	}
	return groups
}

// SameCityOverlap 同城且处于拜访相关阶段的其他客户，用于合并拜访路线
func SameCityOverlap(customers []models.Customer, city string, excludeID int64) []models.Customer {
	out := []models.Customer{}
	for _, c := range customers {
		if c.City != city || c.ID == excludeID {
			continue
		}
		switch c.Status {
		case models.StatusVisitRequested, models.StatusVisitScheduled, models.StatusVisitPending:
			out = append(out, c)
		}
	}
	return out
}

// CalendarDay 日历中的一天
type CalendarDay struct {
	Date      string            `json:"date"`
	Customers []models.Customer `json:"customers"`
}

// UpcomingCalendar 未来30天（含今天）的拜访日历，无安排的日期保留空列表
func UpcomingCalendar(customers []models.Customer, now time.Time) []CalendarDay {
	days := make([]CalendarDay, 0, 30)
	index := map[string]int{}
	for i := 0; i < 30; i++ {
		date := utils.TodayISO(now.AddDate(0, 0, i))
		index[date] = len(days)
		days = append(days, CalendarDay{Date: date, Customers: []models.Customer{}})
	}
	for _, c := range customers {
		if c.VisitDate == "" {
			continue
		}
		if pos, ok := index[c.VisitDate]; ok {
			days[pos].Customers = append(days[pos].Customers, c)
		}
	}
	return days
}

// Cities 现有客户的城市列表，去重排序
func Cities(customers []models.Customer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range customers {
		if c.City != "" && !seen[c.City] {
			seen[c.City] = true
			out = append(out, c.City)
		}
	}
	sort.Strings(out)
	return out
}

// AllTags 现有客户的标签词表，去重排序
func AllTags(customers []models.Customer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range customers {
		for _, tag := range c.Tags {
			trimmed := strings.TrimSpace(tag)
			if trimmed != "" && !seen[trimmed] {
				seen[trimmed] = true
				out = append(out, trimmed)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Reminders 提醒面板数据
type Reminders struct {
	MessageDue        []models.Customer `json:"messageDue"`
	VisitsToday       []models.Customer `json:"visitsToday"`
	FollowupsDue      []models.Customer `json:"followupsDue"`
	StaleCustomers    []RankedCustomer  `json:"staleCustomers"`
	HighPriorityFocus []RankedCustomer  `json:"highPriorityFocus"`
	PendingByCity     []CityGroup       `json:"pendingByCity"`
}

// ComputeReminders 汇总提醒面板
func ComputeReminders(customers []models.Customer, now time.Time) Reminders {
	return Reminders{
		MessageDue:        MessageDue(customers, now),
		VisitsToday:       VisitsToday(customers, now),
		FollowupsDue:      FollowupsDue(customers, now),
		StaleCustomers:    StaleCustomers(customers, now),
		HighPriorityFocus: HighPriorityFocus(customers, now),
		PendingByCity:     PendingByCity(customers),
	}
}
