package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Checker modes
const (
	ModeMock   = "mock"
	ModeRemote = "remote"
	ModeLLM    = "llm"
)

type Config struct {
	ServerAddr  string
	LogLevel    string
	Environment string
	CORSOrigins []string

	// Content checker
	CheckerMode          string
	MockDelay            time.Duration
	MockSeed             uint64
	MockFailureRate      float64
	RemoteCheckerURL     string
	RemoteCheckerTimeout time.Duration

	// Result cache; disabled when RedisURL is empty
	RedisURL string
	CacheTTL time.Duration

	// Check history; disabled when DatabaseURL is empty
	DatabaseURL string

	// Report archive; disabled when MinioEndpoint is empty
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	S3Region       string
	ReportURLTTL   time.Duration

	// LLM checker
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	YtdlpPath      string
	TranscriptLang string

	SessionTTL     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment after applying the dotenv
// file named by ENV_FILE (default .env), if present. Variables already set
// in the environment win over the file.
func Load() (*Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var p parser
	cfg := &Config{
		ServerAddr:  getEnvOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),

		CheckerMode:          strings.ToLower(getEnvOrDefault("CHECKER_MODE", ModeMock)),
		MockDelay:            p.duration("MOCK_DELAY", "2s"),
		MockSeed:             p.uint("MOCK_SEED", "0"),
		MockFailureRate:      p.float("MOCK_FAILURE_RATE", "0"),
		RemoteCheckerURL:     os.Getenv("REMOTE_CHECKER_URL"),
		RemoteCheckerTimeout: p.duration("REMOTE_CHECKER_TIMEOUT", "30s"),

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: p.duration("CACHE_TTL", "1h"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnvOrDefault("MINIO_BUCKET", "safety-reports"),
		MinioUseSSL:    p.bool("MINIO_USE_SSL", "false"),
		S3Region:       getEnvOrDefault("S3_REGION", "us-east-1"),
		ReportURLTTL:   p.duration("REPORT_URL_TTL", "15m"),

		LLMBaseURL:     getEnvOrDefault("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       getEnvOrDefault("LLM_MODEL", "llama3"),
		YtdlpPath:      getEnvOrDefault("YTDLP_PATH", "yt-dlp"),
		TranscriptLang: getEnvOrDefault("TRANSCRIPT_LANG", "en"),

		SessionTTL:     p.duration("SESSION_TTL", "30m"),
		RateLimitRPS:   p.float("RATE_LIMIT_RPS", "1"),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", "5"),
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse but cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.CheckerMode {
	case ModeMock, ModeLLM:
	case ModeRemote:
		if c.RemoteCheckerURL == "" {
			errs = append(errs, errors.New("REMOTE_CHECKER_URL is required when CHECKER_MODE=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("CHECKER_MODE must be mock, remote or llm, got %q", c.CheckerMode))
	}

	if c.MockFailureRate < 0 || c.MockFailureRate > 1 {
		errs = append(errs, fmt.Errorf("MOCK_FAILURE_RATE must be between 0 and 1, got %v", c.MockFailureRate))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects conversion errors so every bad variable is reported at once.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (p *parser) duration(key, def string) time.Duration {
	v := getEnvOrDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
	}
	return d
}

func (p *parser) int(key, def string) int {
	v := getEnvOrDefault(key, def)
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
	}
	return n
}

func (p *parser) uint(key, def string) uint64 {
	v := getEnvOrDefault(key, def)
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
	}
	return n
}

func (p *parser) float(key, def string) float64 {
	v := getEnvOrDefault(key, def)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
	}
	return f
}

func (p *parser) bool(key, def string) bool {
	v := getEnvOrDefault(key, def)
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
	}
	return b
}
