package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
)

// FileStorage stores uploaded evidence and announcement images.
type FileStorage interface {
	// Upload stores r under folder/fileName and returns its public URL.
	Upload(ctx context.Context, r io.Reader, folder, fileName, contentType string) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, fileURL string) error
}

// Config selects and configures a storage driver.
type Config struct {
	Driver string

	CloudinaryURL       string
	CloudinaryCloudName string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// New returns the driver named by cfg.Driver. An empty driver disables
// storage and returns nil.
func New(cfg Config) (FileStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "":
		return nil, nil
	case DriverCloudinary:
		return NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName)
	case DriverS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectName builds "<millis>-<random>.<ext>" for an uploaded file, keeping
// the original extension.
func ObjectName(original string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(original)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), randomSuffix(), ext)
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b)
}
