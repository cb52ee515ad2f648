package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/gsaan/gsaan-backend/pkg/logger"
)

const (
	presignExpiry = 15 * time.Minute
	// DeleteObjects accepts at most 1000 keys per call.
	deleteBatchSize = 1000
)

// ObjectStore holds product images and generated reports.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// DeleteByURL removes the object behind a public URL. Failures are logged
	// and swallowed.
	DeleteByURL(ctx context.Context, fileURL string)
	// DeletePrefix removes every object under prefix and returns the count.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	PresignUpload(ctx context.Context, folder, filename, contentType string) (*PresignedURLResponse, error)
	URLFor(key string) string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		// Environment, shared config or instance role.
		cfg, err = config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"region": region,
				"error":  err.Error(),
			})
			cfg = aws.Config{Region: region}
		}
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3Storage) URLFor(key string) string {
	return publicURL(s.baseURL, s.bucket, s.region, key)
}

func publicURL(baseURL, bucket, region, key string) string {
	if baseURL != "" {
		return fmt.Sprintf("%s/%s", baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// KeyFromURL recovers the object key from a URL produced by URLFor.
func KeyFromURL(baseURL, bucket, region, fileURL string) (string, bool) {
	prefix := publicURL(strings.TrimRight(baseURL, "/"), bucket, region, "")
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(fileURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	logger.Debug("Uploading object to S3", map[string]interface{}{
		"key":          key,
		"size":         size,
		"content_type": contentType,
	})

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload object to S3", err, map[string]interface{}{
			"key": key,
		})
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.URLFor(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	logger.Debug("Deleted object from S3", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (s *S3Storage) DeleteByURL(ctx context.Context, fileURL string) {
	key, ok := KeyFromURL(s.baseURL, s.bucket, s.region, fileURL)
	if !ok {
		logger.Warn("Skipping delete of foreign URL", map[string]interface{}{
			"url": fileURL,
		})
		return
	}
	if err := s.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete object by URL", map[string]interface{}{
			"url":   fileURL,
			"error": err.Error(),
		})
	}
}

func (s *S3Storage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	deleted := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: keys[start:end], Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects under %s: %w", prefix, err)
		}
		deleted += end - start
	}

	logger.Info("Deleted objects under prefix", map[string]interface{}{
		"prefix": prefix,
		"count":  deleted,
	})
	return deleted, nil
}

// PresignUpload returns a PUT URL valid for 15 minutes under folder.
func (s *S3Storage) PresignUpload(ctx context.Context, folder, filename, contentType string) (*PresignedURLResponse, error) {
	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: req.URL,
		FileURL:   s.URLFor(key),
		Key:       key,
	}, nil
}
