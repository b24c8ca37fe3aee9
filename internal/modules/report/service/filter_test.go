package service

import (
	"testing"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/report/dto"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func sampleReports() []*entity.Report {
	day := func(d string) time.Time {
		t, _ := time.Parse("2006-01-02 15:04", d)
		return t
	}
	return []*entity.Report{
		{Category: "cyber", Details: "Group chat harassment", Status: entity.StatusResolved, ReporterName: strPtr("Ana Cruz"), CreatedAt: day("2024-03-10 23:30")},
		{Category: "verbal", Details: "Name calling at the canteen", Status: entity.StatusPending, CreatedAt: day("2024-03-05 08:00")},
		{Category: "physical", Details: "Pushed on the stairs", Status: "", CreatedAt: day("2024-02-28 12:00")},
		{Category: "verbal", Details: "Insults in class", Status: entity.StatusInProgress, ReporterName: strPtr("Ben Reyes"), CreatedAt: day("2024-02-01 00:00")},
	}
}

func TestFilterReports(t *testing.T) {
	reports := sampleReports()

	tests := []struct {
		name   string
		filter dto.ReportFilter
		want   []string
	}{
		{"no filter keeps everything", dto.ReportFilter{}, []string{"cyber", "verbal", "physical", "verbal"}},
		{"status all", dto.ReportFilter{Status: "all", Category: "all"}, []string{"cyber", "verbal", "physical", "verbal"}},
		{"status resolved", dto.ReportFilter{Status: entity.StatusResolved}, []string{"cyber"}},
		{"category verbal", dto.ReportFilter{Category: "verbal"}, []string{"verbal", "verbal"}},
		{"search details case-insensitive", dto.ReportFilter{Search: "STAIRS"}, []string{"physical"}},
		{"search reporter name", dto.ReportFilter{Search: "reyes"}, []string{"verbal"}},
		{"search category", dto.ReportFilter{Search: "cyb"}, []string{"cyber"}},
		{"inclusive date range", dto.ReportFilter{From: "2024-02-28", To: "2024-03-10"}, []string{"cyber", "verbal", "physical"}},
		{"from only", dto.ReportFilter{From: "2024-03-06"}, []string{"cyber"}},
		{"to only", dto.ReportFilter{To: "2024-02-01"}, []string{"verbal"}},
		{"status resolved with a search matching only other rows", dto.ReportFilter{Status: entity.StatusResolved, Search: "insults"}, []string{}},
		{"status resolved with a search matching every row", dto.ReportFilter{Status: entity.StatusResolved, Search: "a"}, []string{"cyber"}},
		{"combined", dto.ReportFilter{Category: "verbal", Status: entity.StatusPending, From: "2024-03-01"}, []string{"verbal"}},
		{"no match", dto.ReportFilter{Search: "nothing like this"}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterReports(reports, tc.filter)
			categories := make([]string, 0, len(got))
			for _, r := range got {
				categories = append(categories, r.Category)
			}
			assert.Equal(t, tc.want, categories)
		})
	}
}

func TestFilterReportsKeepsOrder(t *testing.T) {
	reports := sampleReports()
	got := FilterReports(reports, dto.ReportFilter{})
	for i := range reports {
		assert.Same(t, reports[i], got[i])
	}
}

func TestDistinctCategories(t *testing.T) {
	assert.Equal(t, []string{"cyber", "verbal", "physical"}, DistinctCategories(sampleReports()))
	assert.Empty(t, DistinctCategories(nil))
}
