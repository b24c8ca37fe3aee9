package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const reportsIndex = "reports"

type ReportIndex interface {
	IndexReports(reports ...*entity.Report) error
	SearchReportIDs(query, status, category string, limit int) ([]uuid.UUID, error)
}

type meiliReportIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewReportIndex(client meilisearch.ServiceManager) ReportIndex {
	s := &meiliReportIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *meiliReportIndex) initIndex() {
	filterable := []any{"status", "category"}
	if _, err := s.client.Index(reportsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update reports filterable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(reportsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update reports sortable attributes: %v", err)
	}

	searchable := []string{"details", "reporter_name", "category"}
	if _, err := s.client.Index(reportsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update reports searchable attributes: %v", err)
	}
}

type reportDoc struct {
	ID           string `json:"id"`
	Details      string `json:"details"`
	ReporterName string `json:"reporter_name"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	IncidentDate string `json:"incident_date"`
	CreatedAt    int64  `json:"created_at"`
}

// CleanText strips markup and collapses whitespace before indexing.
func CleanText(p *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	clean := html.UnescapeString(p.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliReportIndex) toDoc(r *entity.Report) reportDoc {
	doc := reportDoc{
		ID:           r.ID.String(),
		Details:      CleanText(s.sanitizer, r.Details),
		Category:     r.Category,
		Status:       r.Status,
		IncidentDate: r.IncidentDate.Format("2006-01-02"),
		CreatedAt:    r.CreatedAt.Unix(),
	}
	if r.ReporterName != nil {
		doc.ReporterName = *r.ReporterName
	}
	return doc
}

func (s *meiliReportIndex) IndexReports(reports ...*entity.Report) error {
	if len(reports) == 0 {
		return nil
	}

	docs := make([]reportDoc, len(reports))
	for i, r := range reports {
		docs[i] = s.toDoc(r)
	}

	task, err := s.client.Index(reportsIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index reports: %w", err)
	}
	log.Printf("Indexed %d report(s), task id: %d", len(docs), task.TaskUID)
	return nil
}

// SearchReportIDs returns matching report ids in rank order.
func (s *meiliReportIndex) SearchReportIDs(query, status, category string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 50
	}

	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	if f := buildFilter(status, category); f != "" {
		req.Filter = f
	}

	raw, err := s.client.Index(reportsIndex).SearchRaw(query, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}

	var resp struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildFilter(status, category string) string {
	var parts []string
	if status != "" && status != "all" {
		parts = append(parts, fmt.Sprintf("status = %q", status))
	}
	if category != "" && category != "all" {
		parts = append(parts, fmt.Sprintf("category = %q", category))
	}
	return strings.Join(parts, " AND ")
}

func strPtr(s string) *string {
	return &s
}
