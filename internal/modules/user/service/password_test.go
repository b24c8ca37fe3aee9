package service

import (
	"testing"

	"anoa.com/safereport/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestPasswordScore(t *testing.T) {
	tests := []struct {
		pw   string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcdefgh", 2},
		{"Abcdefgh", 3},
		{"Abcdefg1", 4},
		{"Abcdef1!", 5},
		{"A1!", 3},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, PasswordScore(tc.pw), tc.pw)
	}
}

func TestValidateNewPassword(t *testing.T) {
	assert.NoError(t, validateNewPassword("Abcdefgh", "Abcdefgh"))
	assert.ErrorIs(t, validateNewPassword("Abcdefgh", "Abcdefgx"), apperror.ErrBadRequest)
	assert.ErrorIs(t, validateNewPassword("Ab1!", "Ab1!"), apperror.ErrBadRequest)
	assert.ErrorIs(t, validateNewPassword("abcdefgh", "abcdefgh"), apperror.ErrBadRequest)
}
