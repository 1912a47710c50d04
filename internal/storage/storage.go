package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

// ErrNotFound is returned when a report does not exist
var ErrNotFound = errors.New("object not found")

const reportContentType = "application/json"

// Client provides access to S3-compatible object storage (MinIO).
type Client struct {
	client *minio.Client
	bucket string
	retry  *apperrors.RetryConfig
}

// Config holds the object storage configuration.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// New creates a new storage client.
func New(cfg *Config) (*Client, error) {
	// minio-go expects host:port
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		retry:  apperrors.StorageRetryConfig(),
	}, nil
}

// ReportKey returns the object key of a video's report.
func ReportKey(videoID string) string {
	return "reports/" + url.PathEscape(videoID) + ".json"
}

// PutReport stores a report, replacing any earlier one.
func (c *Client) PutReport(ctx context.Context, videoID string, data []byte) error {
	key := ReportKey(videoID)
	return apperrors.Retry(ctx, c.retry, func(ctx context.Context) error {
		_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: reportContentType})
		if err != nil {
			return apperrors.StorageError(fmt.Sprintf("failed to put object %s", key)).WithCause(err)
		}
		return nil
	})
}

// GetReport reads a stored report.
func (c *Client) GetReport(ctx context.Context, videoID string) ([]byte, error) {
	key := ReportKey(videoID)
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// ReportExists checks if a report exists in storage.
func (c *Client) ReportExists(ctx context.Context, videoID string) (bool, error) {
	key := ReportKey(videoID)
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence %s: %w", key, err)
	}
	return true, nil
}

// DeleteReport removes a report from storage.
func (c *Client) DeleteReport(ctx context.Context, videoID string) error {
	key := ReportKey(videoID)
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
		}
	}

	return nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Ping checks if the storage is accessible by verifying bucket exists.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	return err
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
