package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/user/dto"
	"anoa.com/safereport/internal/modules/user/repository"
	"anoa.com/safereport/pkg/apperror"
	"anoa.com/safereport/pkg/mailer"
	"anoa.com/safereport/pkg/ratelimiter"
	"anoa.com/safereport/pkg/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateRole    = "oauth_state"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	AdminLogin(ctx context.Context, input dto.AdminLoginInput) (*dto.AuthResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error
	GoogleEnabled() bool
	GoogleLogin() (string, error)
	GoogleCallback(ctx context.Context, state, code string) (*dto.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error
	ConfirmPasswordReset(ctx context.Context, input dto.ResetPasswordInput) error
}

type Options struct {
	TokenTTL            time.Duration
	AdminTTL            time.Duration
	AdminSecret         string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	GoogleAllowedDomain string

	// Password recovery is disabled unless both are set.
	Mailer        mailer.Mailer
	ResetCodes    ResetCodeStore
	Limiter       *ratelimiter.Limiter
	ResetCooldown time.Duration
}

type authService struct {
	repo          repository.UserRepository
	tokens        *token.Manager
	tokenTTL      time.Duration
	adminTTL      time.Duration
	adminSecret   string
	googleConfig  *oauth2.Config
	allowedDomain string

	mailer        mailer.Mailer
	resetCodes    ResetCodeStore
	limiter       *ratelimiter.Limiter
	resetCooldown time.Duration
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, opts Options) AuthService {
	s := &authService{
		repo:          repo,
		tokens:        tokens,
		tokenTTL:      opts.TokenTTL,
		adminTTL:      opts.AdminTTL,
		adminSecret:   opts.AdminSecret,
		allowedDomain: strings.TrimPrefix(strings.ToLower(opts.GoogleAllowedDomain), "@"),
		mailer:        opts.Mailer,
		resetCodes:    opts.ResetCodes,
		limiter:       opts.Limiter,
		resetCooldown: opts.ResetCooldown,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = time.Hour
	}
	if s.adminTTL <= 0 {
		s.adminTTL = 24 * time.Hour
	}
	if s.resetCooldown <= 0 {
		s.resetCooldown = time.Minute
	}

	if opts.GoogleClientID != "" {
		s.googleConfig = &oauth2.Config{
			ClientID:     opts.GoogleClientID,
			ClientSecret: opts.GoogleClientSecret,
			RedirectURL:  opts.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return s
}

func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (*dto.AuthResponse, error) {
	if err := validateNewPassword(input.Password, input.ConfirmPassword); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email is already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.repo.LRNExists(ctx, input.LRN, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("LRN is already registered: %w", apperror.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	lrn := input.LRN
	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
	}
	profile := &entity.Profile{
		LRN:       &lrn,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	user.Profile = profile

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

// AdminLogin exchanges the shared admin key for a 24 hour admin session.
func (s *authService) AdminLogin(ctx context.Context, input dto.AdminLoginInput) (*dto.AuthResponse, error) {
	if s.adminSecret == "" {
		return nil, fmt.Errorf("admin login is disabled: %w", apperror.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(input.AdminKey), []byte(s.adminSecret)) != 1 {
		return nil, fmt.Errorf("invalid admin key: %w", apperror.ErrUnauthorized)
	}

	signed, expiresAt, err := s.tokens.Issue(uuid.NewString(), entity.RoleAdmin, s.adminTTL)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		Role:        entity.RoleAdmin,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return fmt.Errorf("current password is incorrect: %w", apperror.ErrBadRequest)
		}
	}

	if err := validateNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *authService) GoogleEnabled() bool {
	return s.googleConfig != nil
}

func (s *authService) GoogleLogin() (string, error) {
	if s.googleConfig == nil {
		return "", fmt.Errorf("google sign-in is not configured: %w", apperror.ErrNotFound)
	}

	state, _, err := s.tokens.Issue(uuid.NewString(), oauthStateRole, 10*time.Minute)
	if err != nil {
		return "", err
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (s *authService) GoogleCallback(ctx context.Context, state, code string) (*dto.AuthResponse, error) {
	if s.googleConfig == nil {
		return nil, fmt.Errorf("google sign-in is not configured: %w", apperror.ErrNotFound)
	}

	claims, err := s.tokens.Parse(state)
	if err != nil || claims.Role != oauthStateRole {
		return nil, fmt.Errorf("invalid oauth state: %w", apperror.ErrUnauthorized)
	}

	tok, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	resp, err := s.googleConfig.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return s.loginGoogleUser(ctx, gu)
}

func (s *authService) loginGoogleUser(ctx context.Context, gu googleUser) (*dto.AuthResponse, error) {
	email := strings.ToLower(gu.Email)
	if !gu.VerifiedEmail {
		return nil, fmt.Errorf("google account email is not verified: %w", apperror.ErrUnauthorized)
	}
	if s.allowedDomain != "" && !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return nil, fmt.Errorf("email domain must be @%s: %w", s.allowedDomain, apperror.ErrForbidden)
	}

	if user, err := s.repo.FindByGoogleID(ctx, gu.ID); err == nil {
		return s.buildAuthResponse(user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.repo.LinkGoogleID(ctx, user.ID, gu.ID); err != nil {
			log.Printf("Failed to link Google account for user %s: %v", user.ID, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		googleID := gu.ID
		firstName := gu.GivenName
		if firstName == "" {
			firstName = strings.Split(email, "@")[0]
		}
		user = &entity.User{Email: email, GoogleID: &googleID}
		profile := &entity.Profile{FirstName: firstName, LastName: gu.FamilyName, Email: email}
		if err := s.repo.Create(ctx, user, profile); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		user.Profile = profile
	default:
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID.String(), entity.RoleStudent, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		Role:        entity.RoleStudent,
		User:        user,
		Profile:     user.Profile,
	}, nil
}
