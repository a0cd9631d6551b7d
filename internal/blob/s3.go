package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps objects in one S3 bucket.
type S3Store struct {
	client S3API
	bucket string
	logger *slog.Logger
}

func NewS3Store(client S3API, bucket string, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{client: client, bucket: bucket, logger: logger}
}

// NewS3StoreFromEnv loads AWS credentials from the default chain.
func NewS3StoreFromEnv(ctx context.Context, bucket, region string, logger *slog.Logger) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, logger), nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.NotFound("file", key)
		}
		return nil, common.Persistence("s3 get object", err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, common.Persistence("s3 read object", err)
	}
	return b, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return common.Persistence("s3 put object", err)
	}
	s.logger.Debug("blob.s3.put", "bucket", s.bucket, "key", k, "bytes", len(data))
	return nil
}
