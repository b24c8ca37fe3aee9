package response

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetRole returns the role claim stored by the auth middleware.
func GetRole(c *gin.Context) string {
	role, _ := c.Get(ContextRole)
	s, _ := role.(string)
	return s
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	var rateErr *apperror.RateLimitError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
	}

	message := err.Error()
	var appErr *apperror.AppError
	if code == http.StatusInternalServerError && (!errors.As(err, &appErr) || appErr.Message == "") {
		// Driver and SDK errors stay in the log.
		message = apperror.ErrInternal.Error()
	}

	c.JSON(code, gin.H{"error": message})
}

// BindError renders a request binding failure as 400.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
}
