package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, "req-1", SessionNotFound().WithDetails(map[string]any{"session_id": "abc"}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if got := w.Header().Get(RequestIDHeader); got != "req-1" {
		t.Errorf("expected X-Request-ID req-1, got %q", got)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != CodeSessionNotFound {
		t.Errorf("expected code %s, got %s", CodeSessionNotFound, resp.Error.Code)
	}
	if resp.Error.RequestID != "req-1" {
		t.Errorf("expected request_id req-1, got %s", resp.Error.RequestID)
	}
	if resp.Error.Details["session_id"] != "abc" {
		t.Errorf("expected details to be forwarded, got %v", resp.Error.Details)
	}
}

func TestWriteError_WrappedAndUnknown(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, "", fmt.Errorf("lookup: %w", RateLimited()))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("wrapped AppError: expected 429, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	WriteError(w, "", fmt.Errorf("boom"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("plain error: expected 500, got %d", w.Code)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		client    bool
		external  bool
	}{
		{"validation", ValidationError("bad"), false, true, false},
		{"check failed", CheckFailed("down"), true, false, true},
		{"timeout", ExternalTimeout("classifier"), true, false, true},
		{"database", DatabaseError("x"), false, false, false},
		{"storage", StorageError("x"), true, false, false},
		{"disabled", FeatureDisabled("history"), false, false, false},
		{"plain", fmt.Errorf("plain"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
			if got := IsClientError(tt.err); got != tt.client {
				t.Errorf("IsClientError = %v, want %v", got, tt.client)
			}
			if got := IsExternalError(tt.err); got != tt.external {
				t.Errorf("IsExternalError = %v, want %v", got, tt.external)
			}
		})
	}
}

func TestRetry_EventuallySucceeds(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return CheckFailed("backend unavailable")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_StopsOnClientError(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return ValidationError("bad input")
	})

	if !IsClientError(err) {
		t.Fatalf("expected client error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryWithResult_ExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := RetryWithResult(context.Background(), fastRetryConfig(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, fmt.Errorf("503 service unavailable")
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 4 {
		t.Errorf("expected 4 attempts (1 + 3 retries), got %d", attempts)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, fastRetryConfig(), func(ctx context.Context) error {
		t.Fatal("function should not run with a canceled context")
		return nil
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !HTTPRetryableStatus(code) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 404, 422} {
		if HTTPRetryableStatus(code) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID = %q, want abc", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("GenerateRequestID should return unique IDs")
	}
}

func TestSessionIDContext(t *testing.T) {
	ctx := WithSessionID(WithRequestID(context.Background(), "req"), "sess-1")
	if got := GetSessionID(ctx); got != "sess-1" {
		t.Errorf("GetSessionID = %q, want sess-1", got)
	}
	if got := GetRequestID(ctx); got != "req" {
		t.Errorf("GetRequestID = %q, want req", got)
	}
	if got := GetSessionID(nil); got != "" {
		t.Errorf("GetSessionID(nil) = %q, want empty", got)
	}
}

func TestHandleFunc_WritesErrorEnvelope(t *testing.T) {
	h := HandleFunc(func(w http.ResponseWriter, r *http.Request) error {
		return SessionNotFound()
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/x", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-7"))
	w := httptest.NewRecorder()
	h(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), CodeSessionNotFound) {
		t.Errorf("body %q missing %s", w.Body.String(), CodeSessionNotFound)
	}
}

func TestHandleFunc_ClientGone(t *testing.T) {
	h := HandleFunc(func(w http.ResponseWriter, r *http.Request) error {
		return CheckFailed("aborted").WithCause(r.Context().Err())
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h(w, req)

	if w.Body.Len() != 0 {
		t.Errorf("expected no body for a cancelled request, got %q", w.Body.String())
	}
}
