// Package storage keeps post images and avatars in S3-compatible object
// storage (MinIO in development) and hands out presigned download URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"instaclone/internal/config"
)

const region = "us-east-1"

// Service defines the interface for storage operations
type Service interface {
	// Upload stores body under key
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// URL returns a time-limited presigned download URL for key
	URL(ctx context.Context, key string) (string, error)

	// Delete removes an object
	Delete(ctx context.Context, key string) error

	// Health checks if the bucket is reachable
	Health(ctx context.Context) error
}

type service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	urlTTL    time.Duration
}

// New creates a storage service and makes sure the bucket exists
func New(ctx context.Context, cfg config.S3Config) (Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET_NAME are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	protocol := "http"
	if cfg.UseSSL {
		protocol = "https"
	}

	// Path-style addressing is required for MinIO
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", protocol, cfg.Endpoint))
		o.UsePathStyle = true
	})

	// Presigned URLs must be signed for the host the browser will hit
	publicEndpoint := cfg.PublicEndpoint
	if publicEndpoint == "" {
		publicEndpoint = cfg.Endpoint
	}
	publicClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", protocol, publicEndpoint))
		o.UsePathStyle = true
	})

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	s := &service{
		client:    client,
		presigner: s3.NewPresignClient(publicClient),
		bucket:    cfg.Bucket,
		urlTTL:    ttl,
	}

	if err := s.ensureBucket(ctx); err != nil {
		slog.Warn("Failed to ensure bucket exists", "bucket", cfg.Bucket, "error", err)
	}

	return s, nil
}

func (s *service) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	slog.Info("Created S3 bucket", "bucket", s.bucket)
	return nil
}

func (s *service) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *service) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.urlTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *service) Health(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}
