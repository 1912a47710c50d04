package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytsafecheck/backend/internal/youtube"
)

func runCLI(t *testing.T, args ...string) (int, output, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	var out output
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	}
	return code, out, stderr.String()
}

func TestRun_MockDemoVideo(t *testing.T) {
	code, out, _ := runCLI(t, "-seed", "1", "https://www.youtube.com/watch?v=9bZkp7q19f0")

	assert.Equal(t, exitOK, code)
	require.NotNil(t, out.Result)
	assert.Equal(t, "9bZkp7q19f0", out.Validation.VideoID)
	assert.False(t, out.Result.IsSafe)
	assert.Equal(t, "Explicit Content", out.Result.Title)
}

func TestRun_InvalidURL(t *testing.T) {
	code, out, _ := runCLI(t, "not a url")

	assert.Equal(t, exitInvalidURL, code)
	require.NotNil(t, out.Validation)
	assert.False(t, out.Validation.Valid)
	assert.Nil(t, out.Result)
}

func TestRun_QueryParameterURLAccepted(t *testing.T) {
	code, out, _ := runCLI(t, "-seed", "1", "https://example.com/watch?v=abc")

	assert.Equal(t, exitOK, code)
	require.NotNil(t, out.Validation)
	assert.True(t, out.Validation.Valid)
	assert.Equal(t, "abc", out.Validation.VideoID)
	assert.Equal(t, youtube.PatternQuery, out.Validation.Pattern)
	require.NotNil(t, out.Result)
	assert.Equal(t, "abc", out.Result.VideoID)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRun_OutputWriteFailure(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-seed", "1", "https://youtu.be/dQw4w9WgXcQ"}, failingWriter{}, &stderr)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "broken pipe")
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitInvalidURL, code)
	assert.Contains(t, stderr, "usage: safecheck")
}

func TestRun_RemoteRequiresURL(t *testing.T) {
	code, _, stderr := runCLI(t, "-mode", "remote", "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "-remote is required")
}

func TestRun_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	code, out, _ := runCLI(t, "-mode", "remote", "-remote", srv.URL, "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, exitFailed, code)
	assert.NotEmpty(t, out.Error)
	assert.Nil(t, out.Result)
}

func TestRun_RemoteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSafe":true,"categories":{},"title":"Fine","transcript":"ok","videoId":"dQw4w9WgXcQ"}`))
	}))
	defer srv.Close()

	code, out, _ := runCLI(t, "-mode", "remote", "-remote", srv.URL, "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, exitOK, code)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.IsSafe)
}
