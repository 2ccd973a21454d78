package storage

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/semmidev/mysqlbackup/internal/config"
)

type S3Storage struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3 creates an S3 target. Static keys are used when configured, the
// default AWS credential chain otherwise.
func NewS3(ctx context.Context, cfg *config.UploadTarget) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		uploader: s3manager.NewUploader(s3.NewFromConfig(awsCfg)),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

// Upload copies an archive to <prefix>/<remoteName> in the bucket.
func (s *S3Storage) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(remoteName)),
		Body:        file,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (s *S3Storage) objectKey(remoteName string) string {
	if s.prefix == "" {
		return remoteName
	}
	return path.Join(s.prefix, remoteName)
}
