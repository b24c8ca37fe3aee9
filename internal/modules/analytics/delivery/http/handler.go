package handler

import (
	"net/http"

	analyticsDto "anoa.com/safereport/internal/modules/analytics/dto"
	analytics "anoa.com/safereport/internal/modules/analytics/service"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	service analytics.AnalyticsService
}

func NewAnalyticsHandler(service analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	var q analyticsDto.AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Analytics(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
