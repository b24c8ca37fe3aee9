package repository

import (
	"context"
	"time"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	// FindAll returns every report, newest first.
	FindAll(ctx context.Context) ([]*entity.Report, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Report, error)
	// Categories lists the non-empty categories in use, most recently
	// reported first.
	Categories(ctx context.Context) ([]string, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
	CountPendingBefore(ctx context.Context, before time.Time) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindAll(ctx context.Context) ([]*entity.Report, error) {
	var reports []*entity.Report
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Report, error) {
	if len(ids) == 0 {
		return []*entity.Report{}, nil
	}

	var reports []*entity.Report
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&reports).Error; err != nil {
		return nil, err
	}

	// Keep the caller's order (search rank).
	byID := make(map[uuid.UUID]*entity.Report, len(reports))
	for _, rep := range reports {
		byID[rep.ID] = rep
	}
	ordered := make([]*entity.Report, 0, len(ids))
	for _, id := range ids {
		if rep, ok := byID[id]; ok {
			ordered = append(ordered, rep)
		}
	}
	return ordered, nil
}

func (r *reportRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&entity.Report{}).
		Where("category <> ''").
		Group("category").
		Order("MAX(created_at) DESC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *reportRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Report, error) {
	var reports []*entity.Report
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reportRepository) CountPendingBefore(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("status = ? AND created_at < ?", entity.StatusPending, before).
		Count(&count).Error
	return count, err
}
