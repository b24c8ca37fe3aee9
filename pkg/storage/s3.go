package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client used here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Storage struct {
	client     s3API
	bucket     string
	publicBase string
}

// NewS3Storage creates a FileStorage on any S3-compatible endpoint
// (AWS, R2, MinIO).
func NewS3Storage(cfg Config) (FileStorage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
	}

	region := cfg.S3Region
	if region == "" {
		region = "auto"
	}

	opts := s3.Options{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Region:      region,
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	publicBase := strings.TrimRight(cfg.S3PublicBaseURL, "/")
	if publicBase == "" {
		if cfg.S3Endpoint != "" {
			publicBase = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
		}
	}

	return &s3Storage{
		client:     s3.New(opts),
		bucket:     cfg.S3Bucket,
		publicBase: publicBase,
	}, nil
}

func (s *s3Storage) Upload(ctx context.Context, r io.Reader, folder, fileName, contentType string) (string, error) {
	key := path.Join(folder, fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}

	return s.publicBase + "/" + key, nil
}

func (s *s3Storage) Delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from s3: %w", key, err)
	}
	return nil
}

func (s *s3Storage) keyFromURL(fileURL string) (string, error) {
	if strings.HasPrefix(fileURL, s.publicBase+"/") {
		return strings.TrimPrefix(fileURL, s.publicBase+"/"), nil
	}

	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("could not extract object key from URL: %s", fileURL)
	}
	return strings.TrimPrefix(strings.TrimPrefix(u.Path, "/"+s.bucket), "/"), nil
}
