package repository

import (
	"context"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.ReportComment) error
	// FindByReportID returns the thread oldest first.
	FindByReportID(ctx context.Context, reportID uuid.UUID) ([]*entity.ReportComment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.ReportComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByReportID(ctx context.Context, reportID uuid.UUID) ([]*entity.ReportComment, error) {
	var comments []*entity.ReportComment
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
