package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("report not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not your report: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"rate limited", NewRateLimit("submitting a report", 10*time.Second), http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusBadGateway, "upstream down", ErrInternal), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	err := NewRateLimit("commenting", 5*time.Second)

	assert.Equal(t, "please wait 5 seconds before commenting again", err.Error())
	assert.True(t, errors.Is(err, ErrRateLimitExceeded))
}

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "failed to upload image", New(http.StatusInternalServerError, "failed to upload image", errors.New("x")).Error())
	assert.Equal(t, "x", New(http.StatusInternalServerError, "", errors.New("x")).Error())
}
