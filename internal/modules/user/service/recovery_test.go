package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"anoa.com/safereport/internal/dummy"
	"anoa.com/safereport/internal/modules/user/dto"
	"anoa.com/safereport/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecoveryService(t *testing.T) (*authService, *dummy.Mailer, *dummy.Codes) {
	t.Helper()
	mail := &dummy.Mailer{}
	codes := &dummy.Codes{}
	svc, _, _ := newService(t, Options{Mailer: mail, ResetCodes: codes})

	_, err := svc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	return svc, mail, codes
}

func resetInput(code string) dto.ResetPasswordInput {
	return dto.ResetPasswordInput{
		Email:           "ana.cruz@school.test",
		Code:            code,
		NewPassword:     "N3w#Passphrase",
		ConfirmPassword: "N3w#Passphrase",
	}
}

func TestRequestPasswordReset(t *testing.T) {
	t.Run("mails a code to a known account", func(t *testing.T) {
		svc, mail, codes := newRecoveryService(t)

		err := svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: " Ana.Cruz@School.test "})
		require.NoError(t, err)

		require.Len(t, mail.Sent, 1)
		code := codes.Code("ana.cruz@school.test")
		require.Len(t, code, 6)
		assert.Equal(t, "ana.cruz@school.test", mail.Sent[0].To)
		assert.Equal(t, "Ana Cruz", mail.Sent[0].ToName)
		assert.Contains(t, mail.Sent[0].Text, code)
		assert.Contains(t, mail.Sent[0].Text, "15 minutes")
	})

	t.Run("unknown email sends nothing", func(t *testing.T) {
		svc, mail, _ := newRecoveryService(t)

		err := svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: "nobody@school.test"})
		require.NoError(t, err)
		assert.Empty(t, mail.Sent)
	})

	t.Run("mail failure surfaces", func(t *testing.T) {
		svc, mail, _ := newRecoveryService(t)
		mail.Err = errors.New("sendgrid: 401")

		err := svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: "ana.cruz@school.test"})
		assert.ErrorContains(t, err, "failed to send reset code")
	})

	t.Run("unavailable without mailer or code store", func(t *testing.T) {
		svc, _, _ := newService(t, Options{ResetCodes: &dummy.Codes{}})

		err := svc.RequestPasswordReset(context.Background(), dto.ForgotPasswordInput{Email: "ana.cruz@school.test"})
		assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))

		err = svc.ConfirmPasswordReset(context.Background(), resetInput("123456"))
		assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
	})
}

func TestConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code sets the new password once", func(t *testing.T) {
		svc, _, codes := newRecoveryService(t)
		require.NoError(t, svc.RequestPasswordReset(ctx, dto.ForgotPasswordInput{Email: "ana.cruz@school.test"}))
		code := codes.Code("ana.cruz@school.test")

		require.NoError(t, svc.ConfirmPasswordReset(ctx, resetInput(code)))

		_, err := svc.Login(ctx, dto.LoginInput{Email: "ana.cruz@school.test", Password: "N3w#Passphrase"})
		assert.NoError(t, err)
		_, err = svc.Login(ctx, dto.LoginInput{Email: "ana.cruz@school.test", Password: "Secret#123"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)

		err = svc.ConfirmPasswordReset(ctx, resetInput(code))
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		svc, _, codes := newRecoveryService(t)
		require.NoError(t, svc.RequestPasswordReset(ctx, dto.ForgotPasswordInput{Email: "ana.cruz@school.test"}))

		wrong := "000000"
		if codes.Code("ana.cruz@school.test") == wrong {
			wrong = "111111"
		}
		err := svc.ConfirmPasswordReset(ctx, resetInput(wrong))
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
		assert.ErrorContains(t, err, "invalid or expired reset code")

		_, err = svc.Login(ctx, dto.LoginInput{Email: "ana.cruz@school.test", Password: "Secret#123"})
		assert.NoError(t, err)
	})

	t.Run("weak password is rejected before the code is spent", func(t *testing.T) {
		svc, _, codes := newRecoveryService(t)
		require.NoError(t, svc.RequestPasswordReset(ctx, dto.ForgotPasswordInput{Email: "ana.cruz@school.test"}))
		code := codes.Code("ana.cruz@school.test")

		weak := resetInput(code)
		weak.NewPassword, weak.ConfirmPassword = "password", "password"
		assert.ErrorIs(t, svc.ConfirmPasswordReset(ctx, weak), apperror.ErrBadRequest)

		mismatch := resetInput(code)
		mismatch.ConfirmPassword = "N3w#Passphrasf"
		assert.ErrorIs(t, svc.ConfirmPasswordReset(ctx, mismatch), apperror.ErrBadRequest)

		assert.Equal(t, code, codes.Code("ana.cruz@school.test"))
		assert.NoError(t, svc.ConfirmPasswordReset(ctx, resetInput(code)))
	})

	t.Run("no pending code", func(t *testing.T) {
		svc, _, _ := newRecoveryService(t)
		err := svc.ConfirmPasswordReset(ctx, resetInput("123456"))
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}
