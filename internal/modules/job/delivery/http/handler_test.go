package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/safereport/internal/job"
	handler "anoa.com/safereport/internal/modules/job/delivery/http"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportJobs struct {
	reindexed int
	stale     time.Duration
	err       error
}

func (r *reportJobs) ReindexAll(context.Context) (int, error) {
	r.reindexed++
	return 4, r.err
}

func (r *reportJobs) StaleDigest(_ context.Context, olderThan time.Duration) (int64, error) {
	r.stale = olderThan
	return 0, r.err
}

func newRouter(t *testing.T, reports *reportJobs) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	scheduler := job.NewScheduler()
	require.NoError(t, scheduler.Register(job.NewReindexJob(reports)))
	require.NoError(t, scheduler.Register(job.NewStaleDigestJob(reports)))

	h := handler.NewJobHandler(scheduler)
	router := gin.New()
	router.GET("/admin/jobs", h.List)
	router.POST("/admin/jobs/:name/run", h.Run)
	return router
}

func TestListJobs(t *testing.T) {
	router := newRouter(t, &reportJobs{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data []job.Info `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []job.Info{
		{Name: job.ReindexJobName, Schedule: "@every 6h"},
		{Name: job.StaleDigestJobName, Schedule: "@daily"},
	}, res.Data)
}

func TestRunJob(t *testing.T) {
	reports := &reportJobs{}
	router := newRouter(t, reports)

	run := func(name string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/jobs/"+name+"/run", nil))
		return rec
	}

	rec := run(job.ReindexJobName)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job":"search-reindex"`)
	assert.Equal(t, 1, reports.reindexed)

	rec = run(job.StaleDigestJobName)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, job.StaleAfter, reports.stale)

	assert.Equal(t, http.StatusNotFound, run("missing").Code)

	reports.err = errors.New("meilisearch: connection refused")
	rec = run(job.ReindexJobName)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
