package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultPresignExpiry = 15 * time.Minute

// PresignedURL is a time-limited download link.
type PresignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Presigner signs report download URLs with the AWS SDK so they work
// against AWS S3 and MinIO alike.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
}

// NewPresigner creates a presigner for the bucket in cfg.
func NewPresigner(cfg *Config, expiry time.Duration) *Presigner {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}

	opts := s3.Options{
		Region:       region,
		Credentials:  awscreds.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true, // Required for MinIO
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL))
	}

	return &Presigner{
		client: s3.NewPresignClient(s3.New(opts)),
		bucket: cfg.Bucket,
		expiry: expiry,
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// PresignReport returns a download URL for a video's report.
func (p *Presigner) PresignReport(ctx context.Context, videoID string) (*PresignedURL, error) {
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(p.bucket),
		Key:                        aws.String(ReportKey(videoID)),
		ResponseContentType:        aws.String(reportContentType),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", videoID+".json")),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign report %s: %w", videoID, err)
	}

	return &PresignedURL{
		URL:       req.URL,
		ExpiresAt: time.Now().Add(p.expiry).UTC(),
	}, nil
}

// Reports combines the archive client and presigner behind the
// report endpoints.
type Reports struct {
	client    *Client
	presigner *Presigner
}

// NewReports creates a report store.
func NewReports(client *Client, presigner *Presigner) *Reports {
	return &Reports{client: client, presigner: presigner}
}

// PutReport implements the report archive used by the recording checker.
func (r *Reports) PutReport(ctx context.Context, videoID string, data []byte) error {
	return r.client.PutReport(ctx, videoID, data)
}

// ReportURL returns a presigned URL for an existing report.
func (r *Reports) ReportURL(ctx context.Context, videoID string) (*PresignedURL, error) {
	exists, err := r.client.ReportExists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return r.presigner.PresignReport(ctx, videoID)
}

// Ping checks the underlying bucket.
func (r *Reports) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
