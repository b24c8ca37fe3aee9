package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/announcement/dto"
	"anoa.com/safereport/internal/modules/announcement/repository"
	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"

	realtime "anoa.com/safereport/internal/modules/realtime/service"
)

const (
	ImageFolder = "announcement-images/announcements"

	// ActiveFeedLimit is how many active items the student home page shows.
	ActiveFeedLimit = 5
)

var errImageUpload = errors.New("failed to upload image")

type AnnouncementService interface {
	ListActive(ctx context.Context, viewer uuid.UUID, limit int) ([]dto.AnnouncementResponse, error)
	ListAll(ctx context.Context) ([]dto.AnnouncementResponse, error)
	Create(ctx context.Context, req dto.AnnouncementRequest, image *dto.ImageUpload) (*dto.AnnouncementResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.AnnouncementRequest, image *dto.ImageUpload) (*dto.AnnouncementResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)
	ToggleLike(ctx context.Context, userID, id uuid.UUID) (*dto.LikeResponse, error)
	CountActive(ctx context.Context) (int64, error)
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	storage   storage.FileStorage
	publisher realtime.Publisher
}

func NewAnnouncementService(repo repository.AnnouncementRepository, fileStorage storage.FileStorage, publisher realtime.Publisher) AnnouncementService {
	return &announcementService{
		repo:      repo,
		storage:   fileStorage,
		publisher: publisher,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("announcement not found: %w", apperror.ErrNotFound)
	}
	return err
}

func (s *announcementService) notify(ctx context.Context, action string, id uuid.UUID) {
	s.publisher.Publish(ctx, realtime.ChannelAnnouncements, realtime.Event{
		Table:  "announcements",
		Action: action,
		ID:     id.String(),
	})
}

func (s *announcementService) ListActive(ctx context.Context, viewer uuid.UUID, limit int) ([]dto.AnnouncementResponse, error) {
	if limit <= 0 || limit > ActiveFeedLimit {
		limit = ActiveFeedLimit
	}

	items, err := s.repo.FindAll(ctx, true, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}

	liked, err := s.repo.LikedBy(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AnnouncementResponse, len(items))
	for i, a := range items {
		out[i] = dto.ToAnnouncementResponse(a, liked[a.ID])
	}
	return out, nil
}

func (s *announcementService) ListAll(ctx context.Context) ([]dto.AnnouncementResponse, error) {
	items, err := s.repo.FindAll(ctx, false, 0)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AnnouncementResponse, len(items))
	for i, a := range items {
		out[i] = dto.ToAnnouncementResponse(a, false)
	}
	return out, nil
}

// uploadImage stores image and returns its URL. Unlike report evidence, a
// failed upload aborts the save.
func (s *announcementService) uploadImage(ctx context.Context, image *dto.ImageUpload) (string, error) {
	if image.Size > dto.MaxImageBytes {
		return "", fmt.Errorf("image must be 5MB or smaller: %w", apperror.ErrBadRequest)
	}
	if ct := image.ContentType; ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("only image files are allowed: %w", apperror.ErrBadRequest)
	}

	if s.storage == nil {
		return "", apperror.New(http.StatusInternalServerError, errImageUpload.Error(), errors.New("file storage is not configured"))
	}

	r, err := image.Open()
	if err != nil {
		return "", apperror.New(http.StatusInternalServerError, errImageUpload.Error(), err)
	}
	defer r.Close()

	url, err := s.storage.Upload(ctx, r, ImageFolder, storage.ObjectName(image.Name, time.Now()), image.ContentType)
	if err != nil {
		log.Printf("Error uploading announcement image: %v", err)
		return "", apperror.New(http.StatusInternalServerError, errImageUpload.Error(), err)
	}
	return url, nil
}

func validate(req dto.AnnouncementRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("title and content are required: %w", apperror.ErrBadRequest)
	}
	if !entity.IsValidAnnouncementType(req.Type) {
		return fmt.Errorf("invalid announcement type %q: %w", req.Type, apperror.ErrBadRequest)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *announcementService) Create(ctx context.Context, req dto.AnnouncementRequest, image *dto.ImageUpload) (*dto.AnnouncementResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	a := &entity.Announcement{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Type:     req.Type,
		ImageURL: optional(req.ImageURL),
		IsActive: req.IsActive,
	}

	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		a.ImageURL = &url
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save announcement: %w", err)
	}

	s.notify(ctx, "insert", a.ID)
	resp := dto.ToAnnouncementResponse(a, false)
	return &resp, nil
}

// Update replaces every editable field. The image is replaced by a new
// upload, cleared by RemoveImage, or otherwise taken from ImageURL when set.
func (s *announcementService) Update(ctx context.Context, id uuid.UUID, req dto.AnnouncementRequest, image *dto.ImageUpload) (*dto.AnnouncementResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	previous := a.ImageURL

	a.Title = strings.TrimSpace(req.Title)
	a.Content = strings.TrimSpace(req.Content)
	a.Type = req.Type
	a.IsActive = req.IsActive

	switch {
	case image != nil:
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		a.ImageURL = &url
	case req.RemoveImage:
		a.ImageURL = nil
	case strings.TrimSpace(req.ImageURL) != "":
		a.ImageURL = optional(req.ImageURL)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, notFound(err)
	}

	if previous != nil && (a.ImageURL == nil || *a.ImageURL != *previous) {
		s.deleteImage(ctx, *previous)
	}

	s.notify(ctx, "update", a.ID)
	resp := dto.ToAnnouncementResponse(a, false)
	return &resp, nil
}

func (s *announcementService) deleteImage(ctx context.Context, url string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		log.Printf("Failed to delete announcement image %s: %v", url, err)
	}
}

func (s *announcementService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	if a.ImageURL != nil {
		s.deleteImage(ctx, *a.ImageURL)
	}

	s.notify(ctx, "delete", id)
	return nil
}

func (s *announcementService) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	active, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return false, notFound(err)
	}

	s.notify(ctx, "update", id)
	return active, nil
}

func (s *announcementService) ToggleLike(ctx context.Context, userID, id uuid.UUID) (*dto.LikeResponse, error) {
	liked, count, err := s.repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, notFound(err)
	}

	s.notify(ctx, "update", id)
	return &dto.LikeResponse{Liked: liked, LikesCount: count}, nil
}

func (s *announcementService) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}
