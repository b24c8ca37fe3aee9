package service

import (
	"sort"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/analytics/dto"
	commonDto "anoa.com/safereport/pkg/dto"
)

const (
	MaxMonthlyBuckets = 36
	MaxDailyBuckets   = 120

	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// ascending returns a copy of reports ordered by created_at, oldest first.
func ascending(reports []*entity.Report) []*entity.Report {
	out := make([]*entity.Report, len(reports))
	copy(out, reports)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func effectiveStatus(r *entity.Report) string {
	if r.Status == "" {
		return entity.StatusPending
	}
	return r.Status
}

// CategoryHistogram counts reports per category in the order categories
// first appear, oldest report first. Reports without a category are skipped.
func CategoryHistogram(reports []*entity.Report) []commonDto.NameValue {
	out := []commonDto.NameValue{}
	index := map[string]int{}
	for _, r := range ascending(reports) {
		if r.Category == "" {
			continue
		}
		if i, ok := index[r.Category]; ok {
			out[i].Value++
			continue
		}
		index[r.Category] = len(out)
		out = append(out, commonDto.NameValue{Name: r.Category, Value: 1})
	}
	return out
}

// StatusHistogram counts reports per status in first-seen order.
func StatusHistogram(reports []*entity.Report) []commonDto.NameValue {
	out := []commonDto.NameValue{}
	index := map[string]int{}
	for _, r := range reports {
		status := effectiveStatus(r)
		if i, ok := index[status]; ok {
			out[i].Value++
			continue
		}
		index[status] = len(out)
		out = append(out, commonDto.NameValue{Name: status, Value: 1})
	}
	return out
}

// StatusCounts treats a missing status as pending.
func StatusCounts(reports []*entity.Report) dto.StatusCounts {
	c := dto.StatusCounts{Total: len(reports)}
	for _, r := range reports {
		switch effectiveStatus(r) {
		case entity.StatusPending:
			c.Pending++
		case entity.StatusReviewed:
			c.Reviewed++
		case entity.StatusInProgress:
			c.InProgress++
		case entity.StatusResolved:
			c.Resolved++
		}
	}
	return c
}

// monthRange parses two YYYY-MM bounds. ok is false when either is invalid
// or start is after end.
func monthRange(start, end string) (time.Time, time.Time, bool) {
	s, err := time.Parse(monthLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	e, err := time.Parse(monthLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return s, e, !s.After(e)
}

func monthLabel(t time.Time) string {
	return t.Format("Jan '06")
}

// MonthlySeries buckets reports by calendar month (UTC) from start to end
// inclusive, at most MaxMonthlyBuckets buckets.
func MonthlySeries(reports []*entity.Report, start, end string) []dto.SeriesPoint {
	s, e, ok := monthRange(start, end)
	if !ok {
		return []dto.SeriesPoint{}
	}

	counts := map[string]int{}
	for _, r := range reports {
		counts[r.CreatedAt.UTC().Format(monthLayout)]++
	}

	out := []dto.SeriesPoint{}
	for cursor := s; !cursor.After(e) && len(out) < MaxMonthlyBuckets; cursor = cursor.AddDate(0, 1, 0) {
		key := cursor.Format(monthLayout)
		out = append(out, dto.SeriesPoint{Label: monthLabel(cursor), Period: key, Reports: counts[key]})
	}
	return out
}

// DailySeries buckets reports by UTC day from start to end inclusive, at
// most MaxDailyBuckets buckets.
func DailySeries(reports []*entity.Report, start, end string) []dto.SeriesPoint {
	s, err := time.Parse(dayLayout, start)
	if err != nil {
		return []dto.SeriesPoint{}
	}
	e, err := time.Parse(dayLayout, end)
	if err != nil || s.After(e) {
		return []dto.SeriesPoint{}
	}

	counts := map[string]int{}
	for _, r := range reports {
		counts[r.CreatedAt.UTC().Format(dayLayout)]++
	}

	out := []dto.SeriesPoint{}
	for cursor := s; !cursor.After(e) && len(out) < MaxDailyBuckets; cursor = cursor.AddDate(0, 0, 1) {
		key := cursor.Format(dayLayout)
		out = append(out, dto.SeriesPoint{Label: cursor.Format("Jan 2"), Period: key, Reports: counts[key]})
	}
	return out
}

// CategoryByMonth counts reports per category for each month in range.
// category "" or "all" includes every category seen in reports.
func CategoryByMonth(reports []*entity.Report, start, end, category string) dto.CategoryTrend {
	trend := dto.CategoryTrend{Keys: []string{}, Rows: []dto.CategoryMonthRow{}}

	s, e, ok := monthRange(start, end)
	if !ok {
		return trend
	}

	if category == "" || category == "all" {
		for _, nv := range CategoryHistogram(reports) {
			trend.Keys = append(trend.Keys, nv.Name)
		}
	} else {
		trend.Keys = []string{category}
	}

	counts := map[string]map[string]int{}
	for _, r := range reports {
		key := r.CreatedAt.UTC().Format(monthLayout)
		if counts[key] == nil {
			counts[key] = map[string]int{}
		}
		counts[key][r.Category]++
	}

	for cursor := s; !cursor.After(e) && len(trend.Rows) < MaxMonthlyBuckets; cursor = cursor.AddDate(0, 1, 0) {
		key := cursor.Format(monthLayout)
		row := dto.CategoryMonthRow{Month: monthLabel(cursor), Period: key, Counts: make(map[string]int, len(trend.Keys))}
		for _, k := range trend.Keys {
			row.Counts[k] = counts[key][k]
		}
		trend.Rows = append(trend.Rows, row)
	}
	return trend
}

// WeeklyTrend counts reports for the 7 days ending on now's UTC date,
// labelled by weekday.
func WeeklyTrend(reports []*entity.Report, now time.Time) []dto.SeriesPoint {
	today := now.UTC().Truncate(24 * time.Hour)

	counts := map[string]int{}
	for _, r := range reports {
		counts[r.CreatedAt.UTC().Format(dayLayout)]++
	}

	out := make([]dto.SeriesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dayLayout)
		out = append(out, dto.SeriesPoint{Label: day.Format("Mon"), Period: key, Reports: counts[key]})
	}
	return out
}

// DefaultRanges returns the chart ranges used when the query leaves them
// empty: the last 6 months and the last 14 days.
func DefaultRanges(q dto.AnalyticsQuery, now time.Time) dto.AnalyticsQuery {
	now = now.UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	sixMonthsAgo := thisMonth.AddDate(0, -5, 0).Format(monthLayout)

	if q.MonthlyStart == "" {
		q.MonthlyStart = sixMonthsAgo
	}
	if q.MonthlyEnd == "" {
		q.MonthlyEnd = thisMonth.Format(monthLayout)
	}
	if q.TypeStart == "" {
		q.TypeStart = sixMonthsAgo
	}
	if q.TypeEnd == "" {
		q.TypeEnd = thisMonth.Format(monthLayout)
	}
	if q.DailyStart == "" {
		q.DailyStart = now.AddDate(0, 0, -13).Format(dayLayout)
	}
	if q.DailyEnd == "" {
		q.DailyEnd = now.Format(dayLayout)
	}
	return q
}
