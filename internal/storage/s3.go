package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"conduit/internal/config"
)

// ObjectStore stores public blobs and reports where they can be fetched.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error
	URL(key string) string
}

// S3Store writes to any S3-compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds a client with static credentials. A non-empty
// S3Endpoint switches to path-style addressing against that endpoint.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if !cfg.StorageEnabled() {
		return nil, fmt.Errorf("missing S3 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Printf("[Storage] S3 ready: bucket=%s endpoint=%q", cfg.S3Bucket, cfg.S3Endpoint)
	return &S3Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimSuffix(cfg.S3PublicURL, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		log.Printf("[Storage] Put FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("failed to upload object: %w", err)
	}
	log.Printf("[Storage] Put OK: key=%s bytes=%d", key, len(body))
	return nil
}

func (s *S3Store) URL(key string) string {
	return s.publicURL + "/" + key
}
