package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Entry is the JSON shape of a single log line.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Service   string         `json:"service,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Component string         `json:"component,omitempty"`
	Error     *ErrorDetails  `json:"error,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller,omitempty"`
}

// ErrorDetails contains structured error information
type ErrorDetails struct {
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

// Config configures a Logger. Output defaults to stdout.
type Config struct {
	Output    io.Writer
	Level     Level
	Component string
	Service   string
	Redactor  *Redactor
}

// Logger provides structured logging on top of zerolog
type Logger struct {
	zl        zerolog.Logger
	level     Level
	component string
	redactor  *Redactor
}

var defaultLogger = New(&Config{Level: LevelInfo})

// New creates a new logger
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: LevelInfo}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	redactor := cfg.Redactor
	if redactor == nil {
		redactor = DefaultRedactor()
	}

	zctx := zerolog.New(out).Level(cfg.Level.zerolog()).With().Timestamp()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}

	return &Logger{
		zl:        zctx.Logger(),
		level:     cfg.Level,
		component: cfg.Component,
		redactor:  redactor,
	}
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger
func Default() *Logger {
	return defaultLogger
}

// WithComponent creates a new logger with the specified component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		zl:        l.zl,
		level:     l.level,
		component: component,
		redactor:  l.redactor,
	}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) log(ctx context.Context, level Level, msg string, fields map[string]any, err error) {
	if !l.Enabled(level) {
		return
	}

	ev := l.zl.WithLevel(level.zerolog())
	if ev == nil {
		return
	}

	if requestID := apperrors.GetRequestID(ctx); requestID != "" {
		ev = ev.Str("request_id", requestID)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		ev = ev.Str("trace_id", traceID)
	}
	if sessionID := apperrors.GetSessionID(ctx); sessionID != "" {
		ev = ev.Str("session_id", sessionID)
	}
	if l.component != "" {
		ev = ev.Str("component", l.component)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", l.redactor.RedactFields(fields))
	}

	if err != nil {
		details := zerolog.Dict().Str("message", l.redactor.Redact(err.Error()))
		if appErr, ok := apperrors.As(err); ok {
			details = details.Str("code", appErr.Code).Str("category", string(appErr.Category))
		}
		ev = ev.Dict("error", details)
	}

	if level >= LevelError {
		if _, file, line, ok := runtime.Caller(2); ok {
			parts := strings.Split(file, "/")
			if len(parts) > 2 {
				file = strings.Join(parts[len(parts)-2:], "/")
			}
			ev = ev.Str("caller", fmt.Sprintf("%s:%d", file, line))
		}
	}

	ev.Msg(l.redactor.Redact(msg))
}

func firstFields(fields []map[string]any) map[string]any {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]any) {
	l.log(ctx, LevelDebug, msg, firstFields(fields), nil)
}

// Info logs an info message
func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]any) {
	l.log(ctx, LevelInfo, msg, firstFields(fields), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]any) {
	l.log(ctx, LevelWarn, msg, firstFields(fields), nil)
}

// Error logs an error message
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...map[string]any) {
	l.log(ctx, LevelError, msg, firstFields(fields), err)
}

// Package-level convenience functions

func Debug(ctx context.Context, msg string, fields ...map[string]any) {
	defaultLogger.log(ctx, LevelDebug, msg, firstFields(fields), nil)
}

func Info(ctx context.Context, msg string, fields ...map[string]any) {
	defaultLogger.log(ctx, LevelInfo, msg, firstFields(fields), nil)
}

func Warn(ctx context.Context, msg string, fields ...map[string]any) {
	defaultLogger.log(ctx, LevelWarn, msg, firstFields(fields), nil)
}

func Error(ctx context.Context, msg string, err error, fields ...map[string]any) {
	defaultLogger.log(ctx, LevelError, msg, firstFields(fields), err)
}
