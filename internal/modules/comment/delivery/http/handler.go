package handler

import (
	"net/http"

	commentDto "anoa.com/safereport/internal/modules/comment/dto"
	comment "anoa.com/safereport/internal/modules/comment/service"
	"anoa.com/safereport/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func author(c *gin.Context) (comment.Author, error) {
	userID, err := response.GetUserID(c)
	if err != nil {
		return comment.Author{}, err
	}
	return comment.Author{UserID: userID, Role: response.GetRole(c)}, nil
}

func (h *CommentHandler) List(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	a, err := author(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	comments, err := h.service.List(c.Request.Context(), a, reportID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *CommentHandler) Create(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req commentDto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := author(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), a, reportID, req.Content)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
