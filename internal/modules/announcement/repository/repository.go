package repository

import (
	"context"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *entity.Announcement) error
	Update(ctx context.Context, a *entity.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Announcement, error)
	// FindAll returns announcements newest first. limit <= 0 means no limit.
	FindAll(ctx context.Context, activeOnly bool, limit int) ([]*entity.Announcement, error)
	CountActive(ctx context.Context) (int64, error)
	// ToggleActive flips is_active and returns the new value.
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)
	// ToggleLike likes or unlikes for userID and returns the new state and count.
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (liked bool, count int, err error)
	LikedBy(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Model(a).
		Select("title", "content", "type", "image_url", "is_active", "updated_at").
		Updates(a).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Announcement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Announcement, error) {
	var a entity.Announcement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) FindAll(ctx context.Context, activeOnly bool, limit int) ([]*entity.Announcement, error) {
	var items []*entity.Announcement
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Announcement{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *announcementRepository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a entity.Announcement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&a).Error; err != nil {
			return err
		}
		active = !a.IsActive
		return tx.Model(&a).Update("is_active", active).Error
	})
	return active, err
}

func (r *announcementRepository) ToggleLike(ctx context.Context, id, userID uuid.UUID) (bool, int, error) {
	var (
		liked bool
		count int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a entity.Announcement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&a).Error; err != nil {
			return err
		}

		// Use Find with slice to avoid "record not found" log noise from GORM's First()
		var existing []entity.AnnouncementLike
		if err := tx.Where("announcement_id = ? AND user_id = ?", id, userID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		delta := 1
		if len(existing) > 0 {
			if err := tx.Where("announcement_id = ? AND user_id = ?", id, userID).Delete(&entity.AnnouncementLike{}).Error; err != nil {
				return err
			}
			delta = -1
		} else {
			if err := tx.Create(&entity.AnnouncementLike{AnnouncementID: id, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
		}

		count = a.LikesCount + delta
		if count < 0 {
			count = 0
		}
		return tx.Model(&entity.Announcement{}).Where("id = ?", id).UpdateColumn("likes_count", count).Error
	})
	if err != nil {
		return false, 0, err
	}

	return liked, count, nil
}

func (r *announcementRepository) LikedBy(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var liked []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&entity.AnnouncementLike{}).
		Where("user_id = ? AND announcement_id IN ?", userID, ids).
		Pluck("announcement_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}
