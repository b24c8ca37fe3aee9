package service

import (
	"strings"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/report/dto"
)

// FilterReports applies the admin triage filters in memory. All criteria
// are ANDed; "" and "all" disable status and category filtering. From and
// To are inclusive calendar days compared against created_at in UTC.
func FilterReports(reports []*entity.Report, f dto.ReportFilter) []*entity.Report {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]*entity.Report, 0, len(reports))
	for _, r := range reports {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if f.Status != "" && f.Status != "all" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && f.Category != "all" && r.Category != f.Category {
			continue
		}

		day := r.CreatedAt.UTC().Format("2006-01-02")
		if f.From != "" && day < f.From {
			continue
		}
		if f.To != "" && day > f.To {
			continue
		}

		out = append(out, r)
	}
	return out
}

func matchesSearch(r *entity.Report, term string) bool {
	if strings.Contains(strings.ToLower(r.Details), term) {
		return true
	}
	if r.ReporterName != nil && strings.Contains(strings.ToLower(*r.ReporterName), term) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Category), term)
}

// DistinctCategories lists categories in first-seen order.
func DistinctCategories(reports []*entity.Report) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range reports {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}
