package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ytsafecheck/backend/internal/logger"
)

// Transcript is the caption text of one video.
type Transcript struct {
	VideoID  string    `json:"videoId"`
	Title    string    `json:"title"`
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Cues     []Cue     `json:"cues,omitempty"`
	Metadata *Metadata `json:"-"`
}

// Source fetches transcripts by video ID.
type Source interface {
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// Config holds configuration for the yt-dlp service
type Config struct {
	// YtdlpPath is the path to yt-dlp binary (default: "yt-dlp")
	YtdlpPath string
	// TempDir is the parent directory for caption downloads
	TempDir string
	// Language is the caption language to fetch (default: "en")
	Language string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		YtdlpPath: "yt-dlp",
		TempDir:   os.TempDir(),
		Language:  "en",
	}
}

// Service wraps yt-dlp to fetch metadata and captions
type Service struct {
	cfg *Config
	log *logger.Logger
}

// New creates a new yt-dlp service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.YtdlpPath == "" {
		cfg.YtdlpPath = "yt-dlp"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	// Verify yt-dlp is available
	if _, err := exec.LookPath(cfg.YtdlpPath); err != nil {
		return nil, ErrYtdlpNotFound
	}

	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &Service{cfg: cfg, log: logger.Default().WithComponent("transcript")}, nil
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Fetch retrieves metadata and captions for a video
func (s *Service) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	metadata, err := s.GetMetadata(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if metadata.AgeRestricted {
		s.log.Info(ctx, "video is age restricted", map[string]any{"video_id": videoID})
	}
	if !metadata.HasCaptions(s.cfg.Language) {
		return nil, &FetchError{VideoID: videoID, Message: "no captions for " + s.cfg.Language, Err: ErrNoCaptions}
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "captions-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create caption directory: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", s.cfg.Language,
		"--sub-format", "vtt",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-warnings",
		watchURL(videoID),
	}

	cmd := exec.CommandContext(ctx, s.cfg.YtdlpPath, args...)
	if _, err := cmd.Output(); err != nil {
		return nil, s.categorizeError(videoID, err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if len(matches) == 0 {
		return nil, &FetchError{VideoID: videoID, Message: "caption file not written", Err: ErrNoCaptions}
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Message: "failed to read captions", Err: err}
	}

	cues, err := ParseVTT(string(data))
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Message: "failed to parse captions", Err: err}
	}

	s.log.Debug(ctx, "transcript fetched", map[string]any{
		"video_id": videoID,
		"cues":     len(cues),
	})

	return &Transcript{
		VideoID:  videoID,
		Title:    metadata.Title,
		Language: s.cfg.Language,
		Text:     Text(cues),
		Cues:     cues,
		Metadata: metadata,
	}, nil
}

// GetMetadata retrieves metadata for a video without downloading it
func (s *Service) GetMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	args := []string{
		"--dump-json",
		"--skip-download",
		"--no-warnings",
		watchURL(videoID),
	}

	cmd := exec.CommandContext(ctx, s.cfg.YtdlpPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, s.categorizeError(videoID, err)
	}

	var out ytdlpOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, &FetchError{VideoID: videoID, Message: "failed to parse metadata", Err: err}
	}

	return out.toMetadata(), nil
}

func (s *Service) categorizeError(videoID string, err error) error {
	var stderr string
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr = string(exitErr.Stderr)
	}
	return categorizeError(videoID, err, stderr)
}

// categorizeError converts yt-dlp failures into specific error types
func categorizeError(videoID string, err error, stderr string) error {
	stderrLower := strings.ToLower(stderr)

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return err

	case strings.Contains(stderrLower, "private video") ||
		strings.Contains(stderrLower, "is private"):
		return &FetchError{VideoID: videoID, Message: "video is private", Err: ErrVideoPrivate}

	case strings.Contains(stderrLower, "video unavailable") ||
		strings.Contains(stderrLower, "this video is unavailable"):
		return &FetchError{VideoID: videoID, Message: "video unavailable", Err: ErrVideoUnavailable}

	case strings.Contains(stderrLower, "age-restricted") ||
		strings.Contains(stderrLower, "sign in to confirm your age"):
		return &FetchError{VideoID: videoID, Message: "content is age-restricted", Err: ErrAgeRestricted}

	case strings.Contains(stderrLower, "there are no subtitles") ||
		strings.Contains(stderrLower, "no subtitles"):
		return &FetchError{VideoID: videoID, Message: "no captions", Err: ErrNoCaptions}

	case strings.Contains(stderrLower, "unable to download") ||
		strings.Contains(stderrLower, "connection") ||
		strings.Contains(stderrLower, "network"):
		return &FetchError{VideoID: videoID, Message: "network error", Err: ErrNetworkError}

	default:
		return &FetchError{VideoID: videoID, Message: "yt-dlp failed", Err: fmt.Errorf("%w: %s", ErrFetchFailed, strings.TrimSpace(stderr))}
	}
}
