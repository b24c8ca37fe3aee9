package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"anoa.com/safereport/internal/entity"
	reportDto "anoa.com/safereport/internal/modules/report/dto"
	report "anoa.com/safereport/internal/modules/report/service"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxMultipartMemory keeps small forms in memory; larger files spill to disk.
const maxMultipartMemory = 32 << 20

type ReportHandler struct {
	service report.ReportService
}

func NewReportHandler(service report.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func toUploads(headers []*multipart.FileHeader) []reportDto.FileUpload {
	files := make([]reportDto.FileUpload, 0, len(headers))
	for _, fh := range headers {
		files = append(files, reportDto.FileUpload{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

func (h *ReportHandler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	var req reportDto.SubmitReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var headers []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		headers = form.File["files"]
	}

	resp, err := h.service.Submit(c.Request.Context(), userID, req, toUploads(headers))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ReportHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	reports, err := h.service.ListMine(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reports})
}

// Get serves both the student and admin routes; students only see their own.
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	if response.GetRole(c) == entity.RoleAdmin {
		resp, err := h.service.GetByID(c.Request.Context(), id)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetForStudent(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) ListAll(c *gin.Context) {
	var filter reportDto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	if filter.Page == 0 {
		filter.Page = 1
	}

	resp, err := h.service.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) Search(c *gin.Context) {
	var filter reportDto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	if filter.Search == "" {
		filter.Search = c.Query("q")
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	resp, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req reportDto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Locations lists the incident locations offered by the report form.
func (h *ReportHandler) Locations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": entity.IncidentLocations})
}
