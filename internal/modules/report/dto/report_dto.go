package dto

import (
	"io"
	"time"

	"anoa.com/safereport/internal/entity"
	commonDto "anoa.com/safereport/pkg/dto"
	"github.com/google/uuid"
)

const (
	MaxFiles     = 10
	MaxFileBytes = 25 * 1024 * 1024
)

// SubmitReportRequest is bound from the multipart form; files are read
// separately from the "files" field.
type SubmitReportRequest struct {
	IncidentDate  string `form:"incident_date" binding:"required,datetime=2006-01-02"`
	Category      string `form:"category" binding:"required,oneof=physical verbal social cyber sexual other"`
	Location      string `form:"location" binding:"required"`
	OtherLocation string `form:"other_location" binding:"max=200"`
	Details       string `form:"details" binding:"required,max=10000"`
	Anonymous     bool   `form:"anonymous"`
}

// FileUpload is one attachment in a submission.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type ReportFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Category string `form:"category"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed in_progress resolved"`
}

type ReportResponse struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	Details      string    `json:"details"`
	IncidentDate string    `json:"incident_date"`
	Attachments  []string  `json:"attachments"`
	Status       string    `json:"status"`
	ReporterName *string   `json:"reporter_name"`
	IsAnonymous  bool      `json:"is_anonymous"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

type SubmitReportResponse struct {
	Report          ReportResponse `json:"report"`
	AttachmentCount int            `json:"attachment_count"`
	FailedUploads   int            `json:"failed_uploads"`
}

type ReportListResponse struct {
	Data []ReportResponse `json:"data"`
	// Categories seen across all reports, most recent first, for the
	// category filter. Independent of the filter applied to Data.
	Categories []string                 `json:"categories"`
	Meta       commonDto.PaginationMeta `json:"meta"`
	// Truncated is set when a ranked search hit its result cap, so Meta
	// counts only the first hits.
	Truncated bool `json:"truncated,omitempty"`
}

func ToReportResponse(r *entity.Report) ReportResponse {
	var attachments []string
	if len(r.Attachments) > 0 {
		attachments = []string(r.Attachments)
	}

	return ReportResponse{
		ID:           r.ID,
		Category:     r.Category,
		Details:      r.Details,
		IncidentDate: r.IncidentDate.Format("2006-01-02"),
		Attachments:  attachments,
		Status:       r.Status,
		ReporterName: r.ReporterName,
		IsAnonymous:  r.IsAnonymous(),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

func ToReportResponses(reports []*entity.Report) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = ToReportResponse(r)
	}
	return out
}
