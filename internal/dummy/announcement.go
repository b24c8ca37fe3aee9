package dummy

import (
	"context"
	"sort"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/announcement/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type announcementRepository struct {
	db *announcementTable
}

var _ repository.AnnouncementRepository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) repository.AnnouncementRepository {
	return &announcementRepository{db: db.announcements}
}

func (repo *announcementRepository) Create(_ context.Context, a *entity.Announcement) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	a.CreatedAt = stamp()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	repo.db.table[a.ID] = &cp
	return nil
}

func (repo *announcementRepository) Update(_ context.Context, a *entity.Announcement) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing, ok := repo.db.table[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Title = a.Title
	existing.Content = a.Content
	existing.Type = a.Type
	existing.ImageURL = a.ImageURL
	existing.IsActive = a.IsActive
	existing.UpdatedAt = stamp()
	a.UpdatedAt = existing.UpdatedAt
	return nil
}

func (repo *announcementRepository) Delete(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(repo.db.table, id)
	delete(repo.db.likes, id)
	return nil
}

func (repo *announcementRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	a, ok := repo.db.table[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (repo *announcementRepository) FindAll(_ context.Context, activeOnly bool, limit int) ([]*entity.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]*entity.Announcement, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		if activeOnly && !a.IsActive {
			continue
		}
		cp := *a
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (repo *announcementRepository) CountActive(_ context.Context) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int64
	for _, a := range repo.db.table {
		if a.IsActive {
			n++
		}
	}
	return n, nil
}

func (repo *announcementRepository) ToggleActive(_ context.Context, id uuid.UUID) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	a.IsActive = !a.IsActive
	a.UpdatedAt = stamp()
	return a.IsActive, nil
}

func (repo *announcementRepository) ToggleLike(_ context.Context, id, userID uuid.UUID) (bool, int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return false, 0, gorm.ErrRecordNotFound
	}

	likes := repo.db.likes[id]
	if likes == nil {
		likes = make(map[uuid.UUID]bool)
		repo.db.likes[id] = likes
	}

	liked := !likes[userID]
	if liked {
		likes[userID] = true
		a.LikesCount++
	} else {
		delete(likes, userID)
		if a.LikesCount > 0 {
			a.LikesCount--
		}
	}
	return liked, a.LikesCount, nil
}

func (repo *announcementRepository) LikedBy(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if repo.db.likes[id][userID] {
			out[id] = true
		}
	}
	return out, nil
}
