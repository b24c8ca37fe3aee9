package handler

import (
	"io"
	"net/http"
	"strconv"

	announcementDto "anoa.com/safereport/internal/modules/announcement/dto"
	announcement "anoa.com/safereport/internal/modules/announcement/service"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnnouncementHandler struct {
	service announcement.AnnouncementService
}

func NewAnnouncementHandler(service announcement.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// formImage returns the optional "image" part of the request.
func formImage(c *gin.Context) *announcementDto.ImageUpload {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return &announcementDto.ImageUpload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.service.ListActive(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req announcementDto.AnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req, formImage(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req announcementDto.AnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req, formImage(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted successfully"})
}

func (h *AnnouncementHandler) ToggleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	active, err := h.service.ToggleActive(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcementDto.ToggleActiveResponse{IsActive: active})
}

func (h *AnnouncementHandler) ToggleLike(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ToggleLike(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

