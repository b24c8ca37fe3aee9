package service

import (
	"fmt"
	"strings"
	"unicode"

	"anoa.com/safereport/pkg/apperror"
)

const (
	minPasswordLength = 8
	minPasswordScore  = 3
	specialChars      = `!@#$%^&*(),.?":{}|<>`
)

// PasswordScore counts the satisfied rules: length, upper, lower, digit
// and special character.
func PasswordScore(pw string) int {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	score := 0
	for _, ok := range []bool{len(pw) >= minPasswordLength, upper, lower, digit, special} {
		if ok {
			score++
		}
	}
	return score
}

func validateNewPassword(pw, confirm string) error {
	if pw != confirm {
		return fmt.Errorf("passwords do not match: %w", apperror.ErrBadRequest)
	}
	if len(pw) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, apperror.ErrBadRequest)
	}
	if PasswordScore(pw) < minPasswordScore {
		return fmt.Errorf("password is too weak, mix upper and lower case letters, numbers and symbols: %w", apperror.ErrBadRequest)
	}
	return nil
}
