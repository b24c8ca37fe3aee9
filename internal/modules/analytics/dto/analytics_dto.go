package dto

import (
	"encoding/json"

	reportDto "anoa.com/safereport/internal/modules/report/dto"
	commonDto "anoa.com/safereport/pkg/dto"
)

// AnalyticsQuery selects the chart ranges. Empty bounds fall back to the
// defaults: last 6 months for monthly charts, last 14 days for daily.
type AnalyticsQuery struct {
	MonthlyStart string `form:"monthly_start"`
	MonthlyEnd   string `form:"monthly_end"`
	DailyStart   string `form:"daily_start"`
	DailyEnd     string `form:"daily_end"`
	TypeStart    string `form:"type_start"`
	TypeEnd      string `form:"type_end"`
	Type         string `form:"type"`
}

type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Reviewed   int `json:"reviewed"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	Label   string `json:"label"`
	Period  string `json:"period"`
	Reports int    `json:"reports"`
}

// CategoryMonthRow holds the per-category counts for one month.
type CategoryMonthRow struct {
	Month  string
	Period string
	Counts map[string]int
}

// MarshalJSON flattens the counts next to the month label so each row can
// feed a stacked chart directly.
func (r CategoryMonthRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Counts)+2)
	for k, v := range r.Counts {
		out[k] = v
	}
	out["month"] = r.Month
	out["period"] = r.Period
	return json.Marshal(out)
}

type CategoryTrend struct {
	Keys []string           `json:"keys"`
	Rows []CategoryMonthRow `json:"rows"`
}

type AnalyticsResponse struct {
	Summary         StatusCounts          `json:"summary"`
	Categories      []commonDto.NameValue `json:"categories"`
	Monthly         []SeriesPoint         `json:"monthly"`
	Daily           []SeriesPoint         `json:"daily"`
	CategoryByMonth CategoryTrend         `json:"category_by_month"`
}

type DashboardResponse struct {
	TotalReports        int                        `json:"total_reports"`
	PendingReports      int                        `json:"pending_reports"`
	ResolvedReports     int                        `json:"resolved_reports"`
	ActiveAnnouncements int64                      `json:"active_announcements"`
	Categories          []commonDto.NameValue      `json:"categories"`
	Statuses            []commonDto.NameValue      `json:"statuses"`
	WeeklyTrend         []SeriesPoint              `json:"weekly_trend"`
	RecentReports       []reportDto.ReportResponse `json:"recent_reports"`
}
