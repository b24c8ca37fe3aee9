package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	// AdminSecretKey is checked server-side by the admin login endpoint.
	AdminSecretKey string
	AdminTTL       time.Duration

	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	GoogleAllowedDomain string
	FrontendURL         string

	StorageDriver       string
	CloudinaryURL       string
	CloudinaryCloudName string
	S3Endpoint          string
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
	S3PublicBaseURL     string

	MeiliSearchHost string
	MeiliMasterKey  string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	SendgridAPIKey   string
	MailFromEmail    string
	MailFromName     string
	PasswordResetTTL time.Duration

	RateLimitReport     time.Duration
	RateLimitComment    time.Duration
	AnonymousDailyQuota int

	SeedDemoData bool
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminSecretKey: os.Getenv("ADMIN_SECRET_KEY"),

		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		GoogleAllowedDomain: os.Getenv("GOOGLE_ALLOWED_DOMAIN"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),

		StorageDriver:       getEnv("STORAGE_DRIVER", "cloudinary"),
		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		S3Region:            getEnv("S3_REGION", "auto"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:         os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "report-events"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromEmail:  getEnv("MAIL_FROM_EMAIL", "no-reply@safereport.local"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "SafeReport"),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-only-secret"
	}
	if cfg.AdminSecretKey == "" && cfg.AppEnv == "production" {
		return nil, fmt.Errorf("ADMIN_SECRET_KEY is required in production")
	}

	// Parsing durations
	var err error
	if cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.AdminTTL, err = parseDuration(getEnv("ADMIN_SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_SESSION_TTL: %w", err)
	}
	if cfg.PasswordResetTTL, err = parseDuration(getEnv("PASSWORD_RESET_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_RESET_TTL: %w", err)
	}
	if cfg.RateLimitReport, err = parseDuration(getEnv("RATE_LIMIT_REPORT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REPORT: %w", err)
	}
	if cfg.RateLimitComment, err = parseDuration(getEnv("RATE_LIMIT_COMMENT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}

	if cfg.AnonymousDailyQuota, err = strconv.Atoi(getEnv("ANONYMOUS_DAILY_QUOTA", "3")); err != nil {
		return nil, fmt.Errorf("invalid ANONYMOUS_DAILY_QUOTA: %w", err)
	}

	cfg.SeedDemoData, _ = strconv.ParseBool(getEnv("SEED_DEMO_DATA", strconv.FormatBool(cfg.AppEnv == "development")))

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
