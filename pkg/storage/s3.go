package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/pkg/config"
)

// uploadPrefix is the key prefix for every uploaded object.
const uploadPrefix = "uploads"

// S3Storage uploads files to a public-read bucket.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewS3Storage creates an S3 client with static credentials when provided,
// falling back to the default AWS credential chain.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 upload driver requires S3_BUCKET")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
		logger.Info("s3 storage using static credentials", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	} else {
		logger.Warn("s3 storage using default credential chain", zap.String("bucket", cfg.Bucket))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
	}, nil
}

// Driver names the backend for metrics.
func (s *S3Storage) Driver() string { return DriverS3 }

// Save streams r to the bucket and returns the public object URL.
func (s *S3Storage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := path.Join(uploadPrefix, path.Base(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return s.objectURL(key), nil
}

// Delete removes the object referenced by url.
func (s *S3Storage) Delete(ctx context.Context, url string) error {
	prefix := s.objectURL("")
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("url %q does not belong to bucket %s", url, s.bucket)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(url, prefix)),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object: %w", err)
	}
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
