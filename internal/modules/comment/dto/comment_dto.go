package dto

import (
	"time"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type CommentResponse struct {
	ID         uuid.UUID  `json:"id"`
	ReportID   uuid.UUID  `json:"report_id"`
	AuthorID   *uuid.UUID `json:"author_id"`
	AuthorRole string     `json:"author_role"`
	Content    string     `json:"content"`
	CreatedAt  string     `json:"created_at"`
}

func ToCommentResponse(c *entity.ReportComment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		ReportID:   c.ReportID,
		AuthorID:   c.AuthorID,
		AuthorRole: c.AuthorRole,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
