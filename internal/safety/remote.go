package safety

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	maxRemoteBody        = 1 << 20
	userAgent            = "ytsafecheck/1.0"
)

// RemoteConfig configures a RemoteChecker.
type RemoteConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Retry      *apperrors.RetryConfig
	HTTPClient *http.Client
}

// RemoteChecker asks an HTTP backend for verdicts: POST {base}/check with
// {"videoId": ...} returning a Result.
type RemoteChecker struct {
	endpoint   string
	httpClient *http.Client
	retry      *apperrors.RetryConfig
}

type remoteRequest struct {
	VideoID string `json:"videoId"`
}

// NewRemoteChecker creates a client for the backend at cfg.BaseURL.
func NewRemoteChecker(cfg RemoteConfig) (*RemoteChecker, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid remote checker URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultRemoteTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	retry := cfg.Retry
	if retry == nil {
		retry = apperrors.RemoteCheckRetryConfig()
	}

	return &RemoteChecker{
		endpoint:   strings.TrimRight(base.String(), "/") + "/check",
		httpClient: httpClient,
		retry:      retry,
	}, nil
}

// Source implements Named.
func (c *RemoteChecker) Source() string { return SourceRemote }

// Check requests a verdict, retrying transient failures.
func (c *RemoteChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	return apperrors.RetryWithResult(ctx, c.retry, func(ctx context.Context) (*Result, error) {
		return c.doCheck(ctx, videoID)
	})
}

func (c *RemoteChecker) doCheck(ctx context.Context, videoID string) (*Result, error) {
	payload, err := json.Marshal(remoteRequest{VideoID: videoID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if requestID := apperrors.GetRequestID(ctx); requestID != "" {
		req.Header.Set(apperrors.RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return nil, apperrors.ExternalTimeout("content check").WithCause(err)
		}
		return nil, apperrors.CheckFailed("content check backend unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, apperrors.CheckFailed("failed to read content check response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		details := map[string]any{"status": resp.StatusCode, "video_id": videoID}
		if apperrors.HTTPRetryableStatus(resp.StatusCode) {
			return nil, apperrors.CheckFailed(fmt.Sprintf("content check backend returned %d", resp.StatusCode)).
				WithDetails(details)
		}
		return nil, apperrors.New(apperrors.CodeCheckFailed,
			fmt.Sprintf("content check backend rejected request with %d", resp.StatusCode),
			apperrors.CategoryClient, http.StatusUnprocessableEntity).WithDetails(details)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(apperrors.CodeCheckFailed, "malformed content check response",
			apperrors.CategoryClient, http.StatusBadGateway).WithCause(err)
	}
	if result.VideoID == "" {
		result.VideoID = videoID
	}
	return &result, nil
}
