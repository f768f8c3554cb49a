package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"esk/training-app/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Storage implements the FileStorage interface using an S3-compatible backend.
type s3Storage struct {
	client     *s3.Client
	bucketName string
	logger     *slog.Logger
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (FileStorage, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("s3 bucket name is required")
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		logger.Error("failed to load AWS SDK config for S3", "error", err)
		return nil, err
	}

	// Path-style addressing is required by most S3-compatible services (MinIO etc.).
	client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	logger.Info("S3 storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName)

	return &s3Storage{
		client:     client,
		bucketName: cfg.BucketName,
		logger:     logger,
	}, nil
}

// Put uploads body as a single object. Multipart form files are seekable, which
// lets the SDK sign the payload without buffering.
func (s *s3Storage) Put(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error {
	key, err := CleanKey(objectKey)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("failed to put object", "key", key, "bucket", s.bucketName, "error", err)
		return err
	}
	return nil
}

func (s *s3Storage) Get(ctx context.Context, objectKey string) (*Object, error) {
	key, err := CleanKey(objectKey)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrObjectNotFound
		}
		// Without s3:ListBucket a missing key is reported as 403 AccessDenied.
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			switch respErr.HTTPStatusCode() {
			case http.StatusNotFound:
				return nil, ErrObjectNotFound
			case http.StatusForbidden:
				s.logger.Warn("object access denied, treating as missing", "key", key, "bucket", s.bucketName)
				return nil, ErrObjectNotFound
			}
		}
		return nil, err
	}

	obj := &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return obj, nil
}
