package handler

import (
	"context"
	"net/http"
	"time"

	"anoa.com/safereport/internal/job"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
)

// Runner is the part of the scheduler the admin endpoints drive.
type Runner interface {
	Registered() []job.Info
	RunByName(ctx context.Context, name string) error
}

type JobHandler struct {
	runner Runner
}

func NewJobHandler(runner Runner) *JobHandler {
	return &JobHandler{runner: runner}
}

func (h *JobHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.runner.Registered()})
}

// Run executes a job now and answers once it has finished.
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	started := time.Now()

	if err := h.runner.RunByName(c.Request.Context(), name); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "job completed",
		"job":         name,
		"duration_ms": time.Since(started).Milliseconds(),
	})
}
