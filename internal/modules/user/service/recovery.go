package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/safereport/internal/modules/user/dto"
	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/mailer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const actionPasswordReset = "password_reset"

// ResetCodeStore holds the pending one-time password reset codes.
type ResetCodeStore interface {
	Issue(ctx context.Context, subject string) (string, error)
	Verify(ctx context.Context, subject, code string) (bool, error)
	TTL() time.Duration
}

var (
	errRecoveryUnavailable = apperror.New(http.StatusServiceUnavailable, "password recovery is not available", nil)
	errInvalidResetCode    = fmt.Errorf("invalid or expired reset code: %w", apperror.ErrBadRequest)
)

func (s *authService) recoveryEnabled() bool {
	return s.mailer != nil && s.resetCodes != nil
}

// RequestPasswordReset mails a one-time code to the account owner. Unknown
// emails and repeated requests inside the cooldown succeed silently so the
// endpoint does not reveal which addresses have accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error {
	if !s.recoveryEnabled() {
		return errRecoveryUnavailable
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	allowed, err := s.limiter.Allow(ctx, user.ID, actionPasswordReset, s.resetCooldown)
	if err != nil {
		return err
	}
	if !allowed {
		log.Printf("Password reset for %s requested again inside cooldown, skipping", user.ID)
		return nil
	}

	code, err := s.resetCodes.Issue(ctx, email)
	if err != nil {
		_ = s.limiter.Clear(ctx, user.ID, actionPasswordReset)
		return err
	}

	name := ""
	if user.Profile != nil {
		name = user.Profile.FullName()
	}

	msg := mailer.Message{
		To:      email,
		ToName:  name,
		Subject: "Your password reset code",
		Text: fmt.Sprintf(
			"Use this code to reset your password: %s\n\nIt expires in %d minutes. If you did not ask for a reset, you can ignore this email.",
			code, int(s.resetCodes.TTL().Minutes()),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		_ = s.limiter.Clear(ctx, user.ID, actionPasswordReset)
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	return nil
}

// ConfirmPasswordReset sets a new password once the emailed code checks out.
func (s *authService) ConfirmPasswordReset(ctx context.Context, input dto.ResetPasswordInput) error {
	if !s.recoveryEnabled() {
		return errRecoveryUnavailable
	}

	if err := validateNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	ok, err := s.resetCodes.Verify(ctx, email, strings.TrimSpace(input.Code))
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidResetCode
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidResetCode
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, user.ID, string(hashed))
}
