package dto

import (
	"io"
	"time"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
)

const MaxImageBytes = 5 * 1024 * 1024

// AnnouncementRequest is bound from a multipart form so an image can be
// sent with the fields.
type AnnouncementRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Content     string `form:"content" binding:"required,max=5000"`
	Type        string `form:"type" binding:"required,oneof=quote reminder announcement"`
	ImageURL    string `form:"image_url" binding:"omitempty,url"`
	IsActive    bool   `form:"is_active"`
	RemoveImage bool   `form:"remove_image"`
}

type ImageUpload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type AnnouncementResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	ImageURL   *string   `json:"image_url"`
	IsActive   bool      `json:"is_active"`
	LikesCount int       `json:"likes_count"`
	LikedByMe  bool      `json:"liked_by_me"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

type LikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type ToggleActiveResponse struct {
	IsActive bool `json:"is_active"`
}

func ToAnnouncementResponse(a *entity.Announcement, likedByMe bool) AnnouncementResponse {
	return AnnouncementResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Type:       a.Type,
		ImageURL:   a.ImageURL,
		IsActive:   a.IsActive,
		LikesCount: a.LikesCount,
		LikedByMe:  likedByMe,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}
