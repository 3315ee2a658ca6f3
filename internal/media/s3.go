package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/config"
)

// ProviderS3 names the S3 driver.
const ProviderS3 = "s3"

// s3API is the subset of the S3 client used here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores images in a bucket served from a public base URL.
type S3 struct {
	client        s3API
	bucket        string
	publicBaseURL string
}

// NewS3 loads AWS configuration for the bucket's region. Static keys are used
// when configured, otherwise the default credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload puts data under <folder>/<uuid><ext>; the key doubles as public id.
func (s *S3) Upload(ctx context.Context, data []byte, folder string) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	folder = folderOrDefault(folder)

	mt := mimetype.Detect(data)
	key := strings.Trim(folder, "/") + "/" + uuid.NewString() + mt.Extension()
	contentType := mt.String()

	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload to S3")
		return nil, fmt.Errorf("s3 upload: %w", err)
	}
	if out == nil {
		return nil, ErrNoResult
	}

	log.Info().Str("key", key).Msg("Successfully uploaded to S3")
	return &Result{
		SecureURL:    s.publicBaseURL + "/" + key,
		PublicID:     key,
		Format:       strings.TrimPrefix(mt.Extension(), "."),
		ResourceType: resourceType(contentType),
		Bytes:        len(data),
		Folder:       folder,
		Provider:     ProviderS3,
	}, nil
}

// Delete removes the object stored under publicID.
func (s *S3) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

// Provider implements Uploader.
func (s *S3) Provider() string { return ProviderS3 }

// resourceType mirrors the image/video/raw split hosting providers report.
func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw"
	}
}
