package dummy

import (
	"context"
	"strings"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/user/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *userTable
}

var _ repository.UserRepository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) Create(_ context.Context, user *entity.User, profile *entity.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.table {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}

	if user.ID == uuid.Nil {
		user.ID = newID()
	}
	user.CreatedAt = stamp()
	u := *user
	u.Profile = nil
	repo.db.table[user.ID] = &u

	if profile != nil {
		profile.UserID = user.ID
		p := *profile
		repo.db.profiles[user.ID] = &p
	}
	return nil
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	u, ok := repo.db.table[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *u
	if p, ok := repo.db.profiles[id]; ok {
		profile := *p
		found.Profile = &profile
	}
	return &found, nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	repo.db.RLock()
	var id uuid.UUID
	for _, u := range repo.db.table {
		if strings.EqualFold(u.Email, email) {
			id = u.ID
			break
		}
	}
	repo.db.RUnlock()

	if id == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return repo.FindByID(ctx, id)
}

func (repo *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	repo.db.RLock()
	var id uuid.UUID
	for _, u := range repo.db.table {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			id = u.ID
			break
		}
	}
	repo.db.RUnlock()

	if id == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return repo.FindByID(ctx, id)
}

func (repo *userRepository) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	u, ok := repo.db.table[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (repo *userRepository) LinkGoogleID(_ context.Context, id uuid.UUID, googleID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	u, ok := repo.db.table[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.GoogleID = &googleID
	return nil
}

func (repo *userRepository) LRNExists(_ context.Context, lrn string, exceptUserID uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for id, p := range repo.db.profiles {
		if id != exceptUserID && p.LRN != nil && *p.LRN == lrn {
			return true, nil
		}
	}
	return false, nil
}

func (repo *userRepository) FindProfile(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	p, ok := repo.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	found := *p
	return &found, nil
}

func (repo *userRepository) CreateProfile(_ context.Context, profile *entity.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.profiles[profile.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	now := stamp()
	profile.CreatedAt, profile.UpdatedAt = now, now
	p := *profile
	repo.db.profiles[profile.UserID] = &p
	return nil
}

func (repo *userRepository) UpdateProfile(_ context.Context, profile *entity.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.profiles[profile.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	profile.UpdatedAt = stamp()
	p := *profile
	repo.db.profiles[profile.UserID] = &p
	return nil
}
