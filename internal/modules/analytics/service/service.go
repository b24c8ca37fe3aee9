package service

import (
	"context"
	"time"

	"anoa.com/safereport/internal/modules/analytics/dto"
	reportDto "anoa.com/safereport/internal/modules/report/dto"
	reportRepo "anoa.com/safereport/internal/modules/report/repository"
)

const recentReportCount = 5

// ActiveCounter reports how many announcements are live.
type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	Analytics(ctx context.Context, q dto.AnalyticsQuery) (*dto.AnalyticsResponse, error)
}

type analyticsService struct {
	reports       reportRepo.ReportRepository
	announcements ActiveCounter
	now           func() time.Time
}

func NewAnalyticsService(reports reportRepo.ReportRepository, announcements ActiveCounter) AnalyticsService {
	return &analyticsService{
		reports:       reports,
		announcements: announcements,
		now:           time.Now,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	reports, err := s.reports.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.announcements.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	counts := StatusCounts(reports)
	recent := reports
	if len(recent) > recentReportCount {
		recent = recent[:recentReportCount]
	}

	return &dto.DashboardResponse{
		TotalReports:        counts.Total,
		PendingReports:      counts.Pending,
		ResolvedReports:     counts.Resolved,
		ActiveAnnouncements: active,
		Categories:          CategoryHistogram(reports),
		Statuses:            StatusHistogram(reports),
		WeeklyTrend:         WeeklyTrend(reports, s.now()),
		RecentReports:       reportDto.ToReportResponses(recent),
	}, nil
}

// Analytics loads every report once and derives all charts from it.
func (s *analyticsService) Analytics(ctx context.Context, q dto.AnalyticsQuery) (*dto.AnalyticsResponse, error) {
	reports, err := s.reports.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	q = DefaultRanges(q, s.now())

	return &dto.AnalyticsResponse{
		Summary:         StatusCounts(reports),
		Categories:      CategoryHistogram(reports),
		Monthly:         MonthlySeries(reports, q.MonthlyStart, q.MonthlyEnd),
		Daily:           DailySeries(reports, q.DailyStart, q.DailyEnd),
		CategoryByMonth: CategoryByMonth(reports, q.TypeStart, q.TypeEnd, q.Type),
	}, nil
}
