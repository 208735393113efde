package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewS3Store stores under uploads/ in bucket. Public URLs are built from
// baseURL, or from the bucket's virtual-hosted endpoint when empty.
func NewS3Store(client S3API, bucket, region, baseURL string) *S3Store {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{client: client, bucket: bucket, baseURL: baseURL, now: time.Now}
}

// NewS3Client loads the default AWS credential chain for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (s *S3Store) Save(ctx context.Context, typeTag, originalName, contentType string, body io.Reader) (*Upload, error) {
	name := ObjectName(typeTag, originalName, s.now())
	key := "uploads/" + name
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	log.Info().Str("key", key).Msg("Stored upload in S3")
	return &Upload{URL: s.baseURL + "/" + key, Filename: name}, nil
}
