package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/safereport/internal/entity"
	profileDto "anoa.com/safereport/internal/modules/profile/dto"
	reportDto "anoa.com/safereport/internal/modules/report/dto"
	userRepo "anoa.com/safereport/internal/modules/user/repository"
	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RecentReportLimit = 5

// ReportHistory lists a student's own reports, newest first.
type ReportHistory interface {
	ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]reportDto.ReportResponse, error)
}

type ProfileService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*entity.Profile, error)
	Overview(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileOverview, error)
}

type profileService struct {
	repo    userRepo.UserRepository
	reports ReportHistory
}

func NewProfileService(repo userRepo.UserRepository, reports ReportHistory) ProfileService {
	return &profileService{
		repo:    repo,
		reports: reports,
	}
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// GetOrCreate returns the user's profile, creating it from the account on
// first use. When that insert fails an unsaved profile is returned so the
// page still renders.
func (s *profileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	profile = &entity.Profile{
		UserID:    user.ID,
		FirstName: localPart(user.Email),
		Email:     user.Email,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		log.Printf("Failed to create profile for user %s: %v", userID, err)
		now := time.Now().UTC()
		profile.CreatedAt, profile.UpdatedAt = now, now
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*entity.Profile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		first := strings.TrimSpace(*input.FirstName)
		if first == "" {
			return nil, fmt.Errorf("first name cannot be empty: %w", apperror.ErrBadRequest)
		}
		profile.FirstName = first
	}
	if input.LastName != nil {
		profile.LastName = strings.TrimSpace(*input.LastName)
	}

	if input.LRN != nil {
		lrn := strings.TrimSpace(*input.LRN)
		if !validator.IsLRN(lrn) {
			return nil, fmt.Errorf("LRN must be exactly 12 digits: %w", apperror.ErrBadRequest)
		}
		taken, err := s.repo.LRNExists(ctx, lrn, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("LRN is already registered: %w", apperror.ErrConflict)
		}
		profile.LRN = &lrn
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Overview(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileOverview, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.reports.ListMine(ctx, userID, RecentReportLimit)
	if err != nil {
		return nil, err
	}

	return &profileDto.ProfileOverview{
		Profile:       profile,
		RecentReports: recent,
	}, nil
}
