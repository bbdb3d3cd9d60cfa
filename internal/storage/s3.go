package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// s3API is the slice of the S3 client the uploader uses.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader saves drafts as objects in one S3 bucket.
type Uploader struct {
	client s3API
	bucket string
}

// NewUploader builds an uploader from ambient AWS configuration.
func NewUploader(ctx context.Context, bucket string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket not configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Upload puts the draft under key, generating "drafts/draft_… .txt"
// when key is empty, and returns the object's s3:// location. Bucket
// access problems surface as a warning first so the put error that
// follows has context.
func (u *Uploader) Upload(ctx context.Context, draft, key string) (string, error) {
	if key == "" {
		key = "drafts/" + Filename(time.Now())
	}
	key = strings.TrimPrefix(key, "/")

	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)}); err != nil {
		log.Warn().Err(err).Str("bucket", u.bucket).Msg("bucket not accessible")
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(draft),
	})
	if err != nil {
		return "", fmt.Errorf("upload draft to s3://%s/%s: %w", u.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	log.Info().Str("location", location).Int("bytes", len(draft)).Msg("draft uploaded")
	return location, nil
}
