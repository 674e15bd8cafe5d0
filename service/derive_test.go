package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratkar/tracker_end/models"
	"github.com/muratkar/tracker_end/utils"
)

var deriveNow = time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)

// 空集合下所有统计为零，提醒面板为空
func TestAnalyticsEmptyCollection(t *testing.T) {
	a := ComputeAnalytics(nil, deriveNow)
	assert.Zero(t, a.Total)
	assert.Zero(t, a.ResponseRate)
	assert.Zero(t, a.ConversionRate)
	assert.Zero(t, a.Active)

	r := ComputeReminders(nil, deriveNow)
	assert.Empty(t, r.MessageDue)
	assert.Empty(t, r.VisitsToday)
	assert.Empty(t, r.FollowupsDue)
	assert.Empty(t, r.StaleCustomers)
	assert.Empty(t, r.HighPriorityFocus)
	assert.Empty(t, r.PendingByCity)
}

func TestAnalyticsRates(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, Status: models.StatusCompleted, Priority: models.PriorityHigh},
		{ID: 2, Status: models.StatusReplied, Priority: models.PriorityHigh},
		{ID: 3, Status: models.StatusConnectionSent, Priority: models.PriorityMedium},
		{ID: 4, Status: models.StatusVisitScheduled, Priority: models.PriorityLow,
			VisitDate: utils.TodayISO(deriveNow.AddDate(0, 0, 3))},
	}

	a := ComputeAnalytics(customers, deriveNow)
	assert.Equal(t, 4, a.Total)
	assert.Equal(t, 1, a.Completed)
	assert.Equal(t, 3, a.Active)
	// completed、replied、visit_scheduled 均已达到或越过回复阶段
	assert.Equal(t, 3, a.Responded)
	assert.Equal(t, 75, a.ResponseRate)
	assert.Equal(t, 25, a.ConversionRate)
	assert.Equal(t, 2, a.HighPriorityTotal)
	assert.Equal(t, 1, a.HighPriorityOpen)
	assert.Equal(t, 1, a.ScheduledVisits)
	assert.Equal(t, 1, a.UpcomingWeekVisits)
}

func TestUpcomingWeekVisitsBounds(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, VisitDate: utils.TodayISO(deriveNow.AddDate(0, 0, 8))},
		{ID: 2, VisitDate: utils.TodayISO(deriveNow.AddDate(0, 0, -1))},
		{ID: 3, VisitDate: "not-a-date"},
	}
	a := ComputeAnalytics(customers, deriveNow)
	assert.Zero(t, a.UpcomingWeekVisits)
}

// 建联通过次日且未发消息的客户进入消息提醒
func TestMessageDue(t *testing.T) {
	yesterday := utils.TodayISO(deriveNow.AddDate(0, 0, -1))
	customers := []models.Customer{
		{ID: 1, Status: models.StatusConnectionAccepted, ConnectionDate: yesterday},
		{ID: 2, Status: models.StatusConnectionAccepted, ConnectionDate: yesterday, MessageDate: "2026-08-30"},
		{ID: 3, Status: models.StatusConnectionAccepted, ConnectionDate: utils.TodayISO(deriveNow)},
		{ID: 4, Status: models.StatusReplied, ConnectionDate: yesterday},
		{ID: 5, Status: models.StatusConnectionAccepted, ConnectionDate: "garbage"},
	}

	due := MessageDue(customers, deriveNow)
	require.Len(t, due, 1)
	assert.Equal(t, int64(1), due[0].ID)
}

func TestFollowupsDue(t *testing.T) {
	sevenDaysAgo := utils.TodayISO(deriveNow.AddDate(0, 0, -7))
	customers := []models.Customer{
		{ID: 1, Status: models.StatusMessageSent, MessageDate: sevenDaysAgo},
		{ID: 2, Status: models.StatusMessageSent, MessageDate: utils.TodayISO(deriveNow.AddDate(0, 0, -6))},
		{ID: 3, Status: models.StatusReplied, MessageDate: sevenDaysAgo},
		{ID: 4, Status: models.StatusMessageSent},
	}

	due := FollowupsDue(customers, deriveNow)
	require.Len(t, due, 1)
	assert.Equal(t, int64(1), due[0].ID)
}

func TestVisitsToday(t *testing.T) {
	today := utils.TodayISO(deriveNow)
	customers := []models.Customer{
		{ID: 1, VisitDate: today},
		{ID: 2, VisitDate: utils.TodayISO(deriveNow.AddDate(0, 0, 1))},
		{ID: 3},
	}
	visits := VisitsToday(customers, deriveNow)
	require.Len(t, visits, 1)
	assert.Equal(t, int64(1), visits[0].ID)
}

// 停滞客户按天数降序，阈值10天，最多5个
func TestStaleCustomers(t *testing.T) {
	customers := []models.Customer{}
	for i := 0; i < 8; i++ {
		customers = append(customers, models.Customer{
			ID:        int64(i + 1),
			Status:    models.StatusMessageSent,
			UpdatedAt: deriveNow.AddDate(0, 0, -(i + 8)),
		})
	}
	// 已完成的客户不参与
	customers = append(customers, models.Customer{
		ID: 99, Status: models.StatusCompleted, UpdatedAt: deriveNow.AddDate(0, 0, -60),
	})

	stale := StaleCustomers(customers, deriveNow)
	require.Len(t, stale, 5)
	assert.Equal(t, 15, stale[0].Days)
	for i := 1; i < len(stale); i++ {
		assert.GreaterOrEqual(t, stale[i-1].Days, stale[i].Days)
		assert.GreaterOrEqual(t, stale[i].Days, 10)
	}
}

// 更新时间缺失时回退创建时间
func TestStaleFallsBackToCreatedAt(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, Status: models.StatusConnectionSent, CreatedAt: deriveNow.AddDate(0, 0, -20)},
	}
	stale := StaleCustomers(customers, deriveNow)
	require.Len(t, stale, 1)
	assert.Equal(t, 20, stale[0].Days)
}

func TestHighPriorityFocus(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, Priority: models.PriorityHigh, Status: models.StatusReplied, UpdatedAt: deriveNow.AddDate(0, 0, -3)},
		{ID: 2, Priority: models.PriorityHigh, Status: models.StatusCompleted, UpdatedAt: deriveNow.AddDate(0, 0, -9)},
		{ID: 3, Priority: models.PriorityMedium, Status: models.StatusReplied, UpdatedAt: deriveNow.AddDate(0, 0, -9)},
		{ID: 4, Priority: models.PriorityHigh, Status: models.StatusMessageSent, UpdatedAt: deriveNow.AddDate(0, 0, -6)},
	}

	focus := HighPriorityFocus(customers, deriveNow)
	require.Len(t, focus, 2)
	assert.Equal(t, int64(4), focus[0].Customer.ID)
	assert.Equal(t, int64(1), focus[1].Customer.ID)
}

// 城市缺失的待安排客户落入未知分组，分组保持首次出现顺序
func TestPendingByCity(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, City: "上海", Status: models.StatusVisitPending},
		{ID: 2, City: "北京", Status: models.StatusVisitPending},
		{ID: 3, City: "上海", Status: models.StatusVisitPending},
		{ID: 4, City: "上海", Status: models.StatusReplied},
		{ID: 5, Status: models.StatusVisitPending},
	}

	groups := PendingByCity(customers)
	require.Len(t, groups, 3)
	assert.Equal(t, "上海", groups[0].City)
	assert.Len(t, groups[0].Customers, 2)
	assert.Equal(t, "北京", groups[1].City)
	assert.Equal(t, UnknownCityBucket, groups[2].City)
}

func TestSameCityOverlap(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, City: "上海", Status: models.StatusVisitPending},
		{ID: 2, City: "上海", Status: models.StatusVisitScheduled},
		{ID: 3, City: "上海", Status: models.StatusReplied},
		{ID: 4, City: "北京", Status: models.StatusVisitPending},
	}

	overlap := SameCityOverlap(customers, "上海", 1)
	require.Len(t, overlap, 1)
	assert.Equal(t, int64(2), overlap[0].ID)
}

// 日历固定30天，无安排的日期保留空列表
func TestUpcomingCalendar(t *testing.T) {
	today := utils.TodayISO(deriveNow)
	inTen := utils.TodayISO(deriveNow.AddDate(0, 0, 10))
	customers := []models.Customer{
		{ID: 1, VisitDate: today},
		{ID: 2, VisitDate: inTen},
		{ID: 3, VisitDate: utils.TodayISO(deriveNow.AddDate(0, 0, 45))},
	}

	calendar := UpcomingCalendar(customers, deriveNow)
	require.Len(t, calendar, 30)
	assert.Equal(t, today, calendar[0].Date)
	assert.Len(t, calendar[0].Customers, 1)
	assert.Len(t, calendar[10].Customers, 1)
	for i, day := range calendar {
		assert.NotNil(t, day.Customers, "第%d天的列表不应为nil", i)
	}
}

func TestFilterCustomers(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, CompanyName: "星河电子", ContactName: "王磊", City: "上海",
			Status: models.StatusReplied, Priority: models.PriorityHigh, Tags: []string{"重点"}},
		{ID: 2, CompanyName: "北方机械", ContactName: "李娜", City: "北京",
			Status: models.StatusConnectionSent, Priority: models.PriorityMedium,
			Notes: "下月回访"},
		{ID: 3, CompanyName: "Delta Labs", ContactName: "Ahmet", City: "上海",
			Status: models.StatusReplied, Priority: models.PriorityLow, Tags: []string{"海外"}},
	}

	// 关键字大小写不敏感，覆盖公司/联系人/城市/备注/标签
	assert.Len(t, FilterCustomers(customers, FilterOptions{Keyword: "delta"}), 1)
	assert.Len(t, FilterCustomers(customers, FilterOptions{Keyword: "回访"}), 1)
	assert.Len(t, FilterCustomers(customers, FilterOptions{Keyword: "重点"}), 1)

	// 条件取与
	result := FilterCustomers(customers, FilterOptions{City: "上海", Status: "replied", Priority: "high"})
	require.Len(t, result, 1)
	assert.Equal(t, int64(1), result[0].ID)

	assert.Len(t, FilterCustomers(customers, FilterOptions{Tag: "海外"}), 1)
	assert.Len(t, FilterCustomers(customers, FilterOptions{}), 3)
}

func TestCitiesAndTags(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, City: "上海", Tags: []string{"b", "a"}},
		{ID: 2, City: "北京", Tags: []string{"a"}},
		{ID: 3, City: "上海"},
		{ID: 4},
	}

	assert.Equal(t, []string{"上海", "北京"}, Cities(customers))
	assert.Equal(t, []string{"a", "b"}, AllTags(customers))
}

func TestBuildNotifications(t *testing.T) {
	reminders := Reminders{
		MessageDue:  []models.Customer{{ID: 1}},
		VisitsToday: []models.Customer{{ID: 2}, {ID: 3}},
	}

	assert.Empty(t, BuildNotifications(false, reminders))

	notifications := BuildNotifications(true, reminders)
	require.Len(t, notifications, 2)
	assert.Equal(t, "发送消息提醒", notifications[0].Title)
	assert.Contains(t, notifications[1].Body, "2")
}
