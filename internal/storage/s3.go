package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Uploader implements Uploader against an S3-compatible bucket
type S3Uploader struct {
	client *s3.Client
	config S3Config
	logger zerolog.Logger
}

// NewS3Uploader creates a new S3 uploader
func NewS3Uploader(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Uploader, error) {
	var client *s3.Client

	if cfg.Mode == ModeLocal {
		// Same shortcut as the DynamoDB store: a direct client with static
		// credentials, pointed at a local S3-compatible endpoint.
		client = s3.New(s3.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("bucket", cfg.Bucket).
		Msg("S3 uploader initialized")

	return &S3Uploader{client: client, config: cfg, logger: logger}, nil
}

// Upload puts the file at path under key, overwriting any previous object.
func (u *S3Uploader) Upload(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.Info().Str("bucket", u.config.Bucket).Str("key", key).Msg("dataset uploaded")
	return nil
}

// NewUploader creates the appropriate uploader based on configuration
func NewUploader(ctx context.Context, bucket string, logger zerolog.Logger) (Uploader, error) {
	cfg := LoadS3Config(bucket)

	switch cfg.Mode {
	case ModeLocal, ModeAWS:
		return NewS3Uploader(ctx, cfg, logger)
	default:
		logger.Info().Msg("dataset upload disabled (STORAGE_MODE=none)")
		return NewNoopUploader(), nil
	}
}
