package service

import (
	"encoding/json"
	"testing"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/analytics/dto"
	commonDto "anoa.com/safereport/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(ts string) time.Time {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return t
}

func rep(category, status, created string) *entity.Report {
	return &entity.Report{Category: category, Status: status, CreatedAt: at(created)}
}

func TestCategoryHistogramFirstSeenOrder(t *testing.T) {
	// Input is newest first, as the repository returns it.
	reports := []*entity.Report{
		rep("verbal", "", "2024-03-01T00:00:00Z"),
		rep("", "", "2024-02-15T00:00:00Z"),
		rep("cyber", "", "2024-02-01T00:00:00Z"),
		rep("verbal", "", "2024-01-20T00:00:00Z"),
		rep("physical", "", "2024-01-10T00:00:00Z"),
	}

	assert.Equal(t, []commonDto.NameValue{
		{Name: "physical", Value: 1},
		{Name: "verbal", Value: 2},
		{Name: "cyber", Value: 1},
	}, CategoryHistogram(reports))
	assert.Empty(t, CategoryHistogram(nil))
}

func TestStatusCounts(t *testing.T) {
	reports := []*entity.Report{
		rep("verbal", "", "2024-01-01T00:00:00Z"),
		rep("verbal", entity.StatusPending, "2024-01-01T00:00:00Z"),
		rep("verbal", entity.StatusReviewed, "2024-01-01T00:00:00Z"),
		rep("verbal", entity.StatusInProgress, "2024-01-01T00:00:00Z"),
		rep("verbal", entity.StatusResolved, "2024-01-01T00:00:00Z"),
		rep("verbal", entity.StatusResolved, "2024-01-01T00:00:00Z"),
	}

	assert.Equal(t, dto.StatusCounts{Total: 6, Pending: 2, Reviewed: 1, InProgress: 1, Resolved: 2}, StatusCounts(reports))
	assert.Equal(t, []commonDto.NameValue{
		{Name: "pending", Value: 2},
		{Name: "reviewed", Value: 1},
		{Name: "in_progress", Value: 1},
		{Name: "resolved", Value: 2},
	}, StatusHistogram(reports))
}

func TestMonthlySeries(t *testing.T) {
	reports := []*entity.Report{
		rep("verbal", "", "2024-01-05T10:00:00Z"),
		rep("verbal", "", "2024-02-10T10:00:00Z"),
		rep("verbal", "", "2024-01-31T23:59:59Z"),
	}

	got := MonthlySeries(reports, "2024-01", "2024-02")
	assert.Equal(t, []dto.SeriesPoint{
		{Label: "Jan '24", Period: "2024-01", Reports: 2},
		{Label: "Feb '24", Period: "2024-02", Reports: 1},
	}, got)

	got = MonthlySeries(reports[:2], "2024-01", "2024-02")
	assert.Equal(t, 1, got[0].Reports)
	assert.Equal(t, 1, got[1].Reports)
}

func TestMonthlySeriesBounds(t *testing.T) {
	assert.Empty(t, MonthlySeries(nil, "2024-03", "2024-01"), "start after end")
	assert.Empty(t, MonthlySeries(nil, "garbage", "2024-01"))
	assert.Empty(t, MonthlySeries(nil, "2024-01", ""))

	got := MonthlySeries(nil, "2020-01", "2024-12")
	require.Len(t, got, MaxMonthlyBuckets)
	assert.Equal(t, "Jan '20", got[0].Label)
	assert.Equal(t, "Dec '22", got[MaxMonthlyBuckets-1].Label)

	assert.Len(t, MonthlySeries(nil, "2024-05", "2024-05"), 1)
}

func TestDailySeries(t *testing.T) {
	reports := []*entity.Report{
		rep("verbal", "", "2024-01-05T00:00:00Z"),
		rep("verbal", "", "2024-01-05T23:59:00Z"),
		rep("verbal", "", "2024-01-07T12:00:00Z"),
	}

	got := DailySeries(reports, "2024-01-05", "2024-01-07")
	assert.Equal(t, []dto.SeriesPoint{
		{Label: "Jan 5", Period: "2024-01-05", Reports: 2},
		{Label: "Jan 6", Period: "2024-01-06", Reports: 0},
		{Label: "Jan 7", Period: "2024-01-07", Reports: 1},
	}, got)

	assert.Empty(t, DailySeries(reports, "2024-01-07", "2024-01-05"))
	assert.Empty(t, DailySeries(reports, "2024-13-01", "2024-01-05"))
	assert.Len(t, DailySeries(nil, "2023-01-01", "2024-12-31"), MaxDailyBuckets)
}

func TestCategoryByMonth(t *testing.T) {
	reports := []*entity.Report{
		rep("cyber", "", "2024-02-03T00:00:00Z"),
		rep("verbal", "", "2024-01-20T00:00:00Z"),
		rep("verbal", "", "2024-01-05T00:00:00Z"),
		rep("cyber", "", "2023-12-01T00:00:00Z"),
	}

	all := CategoryByMonth(reports, "2024-01", "2024-02", "all")
	assert.Equal(t, []string{"cyber", "verbal"}, all.Keys)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, "Jan '24", all.Rows[0].Month)
	assert.Equal(t, map[string]int{"cyber": 0, "verbal": 2}, all.Rows[0].Counts)
	assert.Equal(t, map[string]int{"cyber": 1, "verbal": 0}, all.Rows[1].Counts)

	one := CategoryByMonth(reports, "2024-01", "2024-02", "verbal")
	assert.Equal(t, []string{"verbal"}, one.Keys)
	assert.Equal(t, map[string]int{"verbal": 0}, one.Rows[1].Counts)

	raw, err := json.Marshal(all.Rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"Jan '24","period":"2024-01","cyber":0,"verbal":2}`, string(raw))

	assert.Empty(t, CategoryByMonth(reports, "2024-02", "2024-01", "").Rows)
	assert.Len(t, CategoryByMonth(nil, "2000-01", "2010-01", "").Rows, MaxMonthlyBuckets)
}

func TestWeeklyTrend(t *testing.T) {
	now := at("2024-06-05T15:00:00Z") // Wednesday
	reports := []*entity.Report{
		rep("verbal", "", "2024-06-05T01:00:00Z"),
		rep("verbal", "", "2024-05-30T23:00:00Z"),
		rep("verbal", "", "2024-05-29T23:00:00Z"),
	}

	got := WeeklyTrend(reports, now)
	require.Len(t, got, 7)
	assert.Equal(t, "Thu", got[0].Label)
	assert.Equal(t, "2024-05-30", got[0].Period)
	assert.Equal(t, 1, got[0].Reports)
	assert.Equal(t, "Wed", got[6].Label)
	assert.Equal(t, 1, got[6].Reports)
}

func TestDefaultRanges(t *testing.T) {
	q := DefaultRanges(dto.AnalyticsQuery{DailyEnd: "2024-03-01"}, at("2024-03-20T08:00:00Z"))
	assert.Equal(t, "2023-10", q.MonthlyStart)
	assert.Equal(t, "2024-03", q.MonthlyEnd)
	assert.Equal(t, "2023-10", q.TypeStart)
	assert.Equal(t, "2024-03", q.TypeEnd)
	assert.Equal(t, "2024-03-07", q.DailyStart)
	assert.Equal(t, "2024-03-01", q.DailyEnd)
}
