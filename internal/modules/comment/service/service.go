package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/comment/dto"
	"anoa.com/safereport/internal/modules/comment/repository"
	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/ratelimiter"
	"github.com/google/uuid"
	"gorm.io/gorm"

	realtime "anoa.com/safereport/internal/modules/realtime/service"
	reportRepo "anoa.com/safereport/internal/modules/report/repository"
)

const actionComment = "comment"

// Author identifies who is commenting. Admin sessions carry no account, so
// their comments are stored without an author id.
type Author struct {
	UserID uuid.UUID
	Role   string
}

func (a Author) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

type CommentService interface {
	List(ctx context.Context, author Author, reportID uuid.UUID) ([]dto.CommentResponse, error)
	Create(ctx context.Context, author Author, reportID uuid.UUID, content string) (*dto.CommentResponse, error)
}

type commentService struct {
	repo      repository.CommentRepository
	reports   reportRepo.ReportRepository
	limiter   *ratelimiter.Limiter
	publisher realtime.Publisher
	cooldown  time.Duration
}

func NewCommentService(
	repo repository.CommentRepository,
	reports reportRepo.ReportRepository,
	limiter *ratelimiter.Limiter,
	publisher realtime.Publisher,
	cooldown time.Duration,
) CommentService {
	return &commentService{
		repo:      repo,
		reports:   reports,
		limiter:   limiter,
		publisher: publisher,
		cooldown:  cooldown,
	}
}

// authorize loads the report and checks a student is its owner.
func (s *commentService) authorize(ctx context.Context, author Author, reportID uuid.UUID) error {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("report not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if !author.IsAdmin() && !report.OwnedBy(author.UserID) {
		return fmt.Errorf("you can only comment on your own reports: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *commentService) List(ctx context.Context, author Author, reportID uuid.UUID) ([]dto.CommentResponse, error) {
	if err := s.authorize(ctx, author, reportID); err != nil {
		return nil, err
	}

	comments, err := s.repo.FindByReportID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = dto.ToCommentResponse(c)
	}
	return out, nil
}

func (s *commentService) Create(ctx context.Context, author Author, reportID uuid.UUID, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment cannot be empty: %w", apperror.ErrBadRequest)
	}

	if err := s.authorize(ctx, author, reportID); err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, author.UserID, actionComment, s.cooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := s.limiter.TTL(ctx, author.UserID, actionComment)
		return nil, apperror.NewRateLimit("commenting again", ttl)
	}

	comment := &entity.ReportComment{
		ReportID:   reportID,
		AuthorRole: entity.AuthorStudent,
		Content:    content,
	}
	if author.IsAdmin() {
		comment.AuthorRole = entity.AuthorAdmin
	} else {
		uid := author.UserID
		comment.AuthorID = &uid
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		_ = s.limiter.Clear(ctx, author.UserID, actionComment)
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.publisher.Publish(ctx, realtime.CommentsChannel(reportID), realtime.Event{
		Table:  "report_comments",
		Action: "insert",
		ID:     comment.ID.String(),
	})

	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}
