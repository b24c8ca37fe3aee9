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
	"anoa.com/safereport/internal/middleware"
	"anoa.com/safereport/internal/modules/report/dto"
	"anoa.com/safereport/internal/modules/report/repository"
	"anoa.com/safereport/pkg/apperror"
	commonDto "anoa.com/safereport/pkg/dto"
	"anoa.com/safereport/pkg/queue"
	"anoa.com/safereport/pkg/ratelimiter"
	"anoa.com/safereport/pkg/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	realtime "anoa.com/safereport/internal/modules/realtime/service"
	search "anoa.com/safereport/internal/modules/search/service"
)

const (
	AttachmentFolder = "report-attachments"

	actionSubmitReport  = "submit_report"
	anonymousQuotaScope = "anonymous_report"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
	searchResultLimit   = 100
)

type ReportService interface {
	Submit(ctx context.Context, userID uuid.UUID, req dto.SubmitReportRequest, files []dto.FileUpload) (*dto.SubmitReportResponse, error)
	GetForStudent(ctx context.Context, userID, id uuid.UUID) (*dto.ReportResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]dto.ReportResponse, error)
	ListAll(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error)
	Search(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.ReportResponse, error)
	ReindexAll(ctx context.Context) (int, error)
	StaleDigest(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ProfileLookup resolves the reporter name of identified submissions.
type ProfileLookup interface {
	FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
}

// EventPublisher forwards report lifecycle events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, e queue.Event) error
}

type Options struct {
	SubmitCooldown      time.Duration
	AnonymousDailyQuota int
}

type reportService struct {
	repo      repository.ReportRepository
	profiles  ProfileLookup
	storage   storage.FileStorage
	limiter   *ratelimiter.Limiter
	publisher realtime.Publisher
	index     search.ReportIndex
	events    EventPublisher
	opts      Options

	now   func() time.Time
	async func(func())
}

// NewReportService wires the report workflow. storage, index and events may
// be nil; the matching side effects are then skipped.
func NewReportService(
	repo repository.ReportRepository,
	profiles ProfileLookup,
	fileStorage storage.FileStorage,
	limiter *ratelimiter.Limiter,
	publisher realtime.Publisher,
	index search.ReportIndex,
	events EventPublisher,
	opts Options,
) ReportService {
	return &reportService{
		repo:      repo,
		profiles:  profiles,
		storage:   fileStorage,
		limiter:   limiter,
		publisher: publisher,
		index:     index,
		events:    events,
		opts:      opts,
		now:       time.Now,
		async:     func(f func()) { go f() },
	}
}

func validateFiles(files []dto.FileUpload) error {
	if len(files) > dto.MaxFiles {
		return fmt.Errorf("you can upload up to %d files only: %w", dto.MaxFiles, apperror.ErrBadRequest)
	}
	for _, f := range files {
		if f.Size > dto.MaxFileBytes {
			return fmt.Errorf("each file must be 25MB or smaller (%s is too large): %w", f.Name, apperror.ErrBadRequest)
		}
	}
	return nil
}

func locationLabel(location, other string) (string, error) {
	loc, ok := entity.FindLocation(location)
	if !ok {
		return "", fmt.Errorf("please select where the incident happened: %w", apperror.ErrBadRequest)
	}
	if loc.FreeText {
		other = strings.TrimSpace(other)
		if other == "" {
			return "", fmt.Errorf("please specify where the incident happened: %w", apperror.ErrBadRequest)
		}
		return other, nil
	}
	return loc.Label, nil
}

func (s *reportService) Submit(ctx context.Context, userID uuid.UUID, req dto.SubmitReportRequest, files []dto.FileUpload) (*dto.SubmitReportResponse, error) {
	// Everything is validated before the first upload starts.
	if err := validateFiles(files); err != nil {
		return nil, err
	}

	if !entity.IsValidCategory(req.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", req.Category, apperror.ErrBadRequest)
	}

	label, err := locationLabel(req.Location, req.OtherLocation)
	if err != nil {
		return nil, err
	}

	details := strings.TrimSpace(req.Details)
	if details == "" {
		return nil, fmt.Errorf("details are required: %w", apperror.ErrBadRequest)
	}

	incidentDate, err := time.Parse("2006-01-02", req.IncidentDate)
	if err != nil {
		return nil, fmt.Errorf("incident date must use YYYY-MM-DD: %w", apperror.ErrBadRequest)
	}
	now := s.now().UTC()
	if incidentDate.After(now.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("incident date cannot be in the future: %w", apperror.ErrBadRequest)
	}

	allowed, err := s.limiter.Allow(ctx, userID, actionSubmitReport, s.opts.SubmitCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := s.limiter.TTL(ctx, userID, actionSubmitReport)
		return nil, apperror.NewRateLimit("submitting another report", ttl)
	}

	if req.Anonymous && s.opts.AnonymousDailyQuota > 0 {
		if err := s.limiter.ConsumeDailyQuota(ctx, anonymousQuotaScope, userID, s.opts.AnonymousDailyQuota); err != nil {
			_ = s.limiter.Clear(ctx, userID, actionSubmitReport)
			if errors.Is(err, ratelimiter.ErrQuotaExceeded) {
				return nil, apperror.New(http.StatusTooManyRequests, fmt.Sprintf("you can submit up to %d anonymous reports per day", s.opts.AnonymousDailyQuota), err)
			}
			return nil, err
		}
	}

	owner := userID.String()
	if req.Anonymous {
		owner = "anonymous"
	}

	urls, failed := s.uploadAttachments(ctx, owner, files)

	report := &entity.Report{
		Category:     req.Category,
		Details:      fmt.Sprintf("Location: %s\n\n%s", label, details),
		IncidentDate: incidentDate,
		Status:       entity.StatusPending,
	}
	if len(urls) > 0 {
		report.Attachments = pq.StringArray(urls)
	}
	if !req.Anonymous {
		uid := userID
		report.UserID = &uid
		report.ReporterName = s.reporterName(ctx, userID)
	}

	if err := s.repo.Create(ctx, report); err != nil {
		_ = s.limiter.Clear(ctx, userID, actionSubmitReport)
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	middleware.RecordReportSubmitted(report.Category, req.Anonymous)
	s.publisher.Publish(ctx, realtime.ChannelReports, realtime.Event{Table: "reports", Action: "insert", ID: report.ID.String()})
	s.afterWrite(report, "report.submitted")

	return &dto.SubmitReportResponse{
		Report:          dto.ToReportResponse(report),
		AttachmentCount: len(urls),
		FailedUploads:   failed,
	}, nil
}

// uploadAttachments uploads files one at a time. A failed upload is logged
// and skipped; the report is still submitted without it.
func (s *reportService) uploadAttachments(ctx context.Context, owner string, files []dto.FileUpload) ([]string, int) {
	var (
		urls   []string
		failed int
	)
	folder := AttachmentFolder + "/" + owner

	for _, f := range files {
		url, err := s.uploadOne(ctx, folder, f)
		middleware.RecordAttachmentUpload(err == nil)
		if err != nil {
			log.Printf("File upload error for %s: %v", f.Name, err)
			failed++
			continue
		}
		urls = append(urls, url)
	}
	return urls, failed
}

func (s *reportService) uploadOne(ctx context.Context, folder string, f dto.FileUpload) (string, error) {
	if s.storage == nil {
		return "", errors.New("file storage is not configured")
	}

	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	return s.storage.Upload(ctx, r, folder, storage.ObjectName(f.Name, s.now()), f.ContentType)
}

func (s *reportService) reporterName(ctx context.Context, userID uuid.UUID) *string {
	profile, err := s.profiles.FindProfile(ctx, userID)
	if err != nil {
		log.Printf("Failed to load profile for reporter %s: %v", userID, err)
		return nil
	}
	if profile == nil {
		return nil
	}
	name := profile.FullName()
	if name == "" {
		return nil
	}
	return &name
}

// afterWrite indexes the report and emits a broker event off the request path.
func (s *reportService) afterWrite(report *entity.Report, eventType string) {
	snapshot := *report
	s.async(func() {
		ctx := context.Background()
		if s.index != nil {
			if err := s.index.IndexReports(&snapshot); err != nil {
				log.Printf("Failed to index report %s: %v", snapshot.ID, err)
			}
		}
		if s.events != nil {
			err := s.events.Publish(ctx, queue.Event{
				Type:     eventType,
				ReportID: snapshot.ID.String(),
				Status:   snapshot.Status,
				Category: snapshot.Category,
			})
			if err != nil {
				log.Printf("Failed to publish %s for report %s: %v", eventType, snapshot.ID, err)
			}
		}
	})
}

func (s *reportService) find(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) GetForStudent(ctx context.Context, userID, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.OwnedBy(userID) {
		// Same answer as a missing report so ids of other reports are not confirmed.
		return nil, fmt.Errorf("report not found: %w", apperror.ErrNotFound)
	}
	resp := dto.ToReportResponse(report)
	return &resp, nil
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToReportResponse(report)
	return &resp, nil
}

func (s *reportService) ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]dto.ReportResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	reports, err := s.repo.FindByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return dto.ToReportResponses(reports), nil
}

func (s *reportService) ListAll(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := FilterReports(all, filter)
	page, meta := commonDto.Paginate(filtered, filter.Page, filter.Limit)

	return &dto.ReportListResponse{
		Data:       dto.ToReportResponses(page),
		Categories: DistinctCategories(all),
		Meta:       meta,
	}, nil
}

// Search ranks by the search engine when one is configured and falls back
// to the in-memory filter otherwise. Ranked results stop at the first
// searchResultLimit hits and are then flagged Truncated.
func (s *reportService) Search(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error) {
	if s.index == nil || strings.TrimSpace(filter.Search) == "" {
		return s.ListAll(ctx, filter)
	}

	ids, err := s.index.SearchReportIDs(filter.Search, filter.Status, filter.Category, searchResultLimit)
	if err != nil {
		log.Printf("Report search failed, falling back to in-memory filter: %v", err)
		return s.ListAll(ctx, filter)
	}

	reports, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	rest := filter
	rest.Search = ""
	filtered := FilterReports(reports, rest)
	page, meta := commonDto.Paginate(filtered, filter.Page, filter.Limit)

	return &dto.ReportListResponse{
		Data:       dto.ToReportResponses(page),
		Categories: categories,
		Meta:       meta,
		Truncated:  len(ids) >= searchResultLimit,
	}, nil
}

// UpdateStatus sets any status from any other. Concurrent updates are last
// write wins.
func (s *reportService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.ReportResponse, error) {
	if !entity.IsValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, apperror.ErrBadRequest)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	report, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	middleware.RecordStatusUpdate(status)
	event := realtime.Event{Table: "reports", Action: "update", ID: id.String()}
	s.publisher.Publish(ctx, realtime.ChannelReports, event)
	s.publisher.Publish(ctx, realtime.ReportChannel(id), event)
	s.afterWrite(report, "report.status_changed")

	resp := dto.ToReportResponse(report)
	return &resp, nil
}

func (s *reportService) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.IndexReports(all...); err != nil {
		return 0, err
	}
	return len(all), nil
}

// StaleDigest counts reports still pending after olderThan and emits a
// digest event when there are any.
func (s *reportService) StaleDigest(ctx context.Context, olderThan time.Duration) (int64, error) {
	count, err := s.repo.CountPendingBefore(ctx, s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	if count > 0 && s.events != nil {
		if err := s.events.Publish(ctx, queue.Event{Type: "report.stale_digest", Status: entity.StatusPending, Count: int(count)}); err != nil {
			log.Printf("Failed to publish stale digest: %v", err)
		}
	}
	return count, nil
}
