package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/safereport/internal/dummy"
	"anoa.com/safereport/internal/entity"
	handler "anoa.com/safereport/internal/modules/analytics/delivery/http"
	"anoa.com/safereport/internal/modules/analytics/dto"
	analytics "anoa.com/safereport/internal/modules/analytics/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db := dummy.Open()
	reports := dummy.NewReportRepository(db)
	require.NoError(t, reports.Create(ctx, &entity.Report{Category: "cyber", CreatedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, reports.Create(ctx, &entity.Report{Category: "cyber", CreatedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)}))

	h := handler.NewAnalyticsHandler(analytics.NewAnalyticsService(reports, dummy.NewAnnouncementRepository(db)))
	router := gin.New()
	router.GET("/admin/dashboard", h.Dashboard)
	router.GET("/admin/analytics", h.Analytics)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics?monthly_start=2024-01&monthly_end=2024-02&type=cyber", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Summary dto.StatusCounts  `json:"summary"`
		Monthly []dto.SeriesPoint `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.Pending)
	require.Len(t, res.Monthly, 2)
	assert.Equal(t, 1, res.Monthly[0].Reports)
	assert.Equal(t, 1, res.Monthly[1].Reports)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_reports":2`)
}
