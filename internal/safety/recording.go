package safety

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ytsafecheck/backend/internal/db"
	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/logger"
)

const recordTimeout = 5 * time.Second

// HistoryStore persists check history. *db.CheckRepository implements it.
type HistoryStore interface {
	SaveCheck(ctx context.Context, rec *db.CheckRecord) error
}

// ReportArchive stores full check reports. *storage.Reports implements it.
type ReportArchive interface {
	PutReport(ctx context.Context, videoID string, data []byte) error
}

// CheckMetrics records check outcomes. *metrics.Metrics implements it.
type CheckMetrics interface {
	RecordCheck(source string, safe bool, duration time.Duration)
	RecordCheckFailure(source, code string, duration time.Duration)
	RecordFailure(sink string)
	InconsistentResult(source string)
}

// Report is the archived form of a check.
type Report struct {
	Result    *Result   `json:"result"`
	Source    string    `json:"source"`
	CheckedAt time.Time `json:"checkedAt"`
	RequestID string    `json:"requestId,omitempty"`
}

// RecordingChecker records every check in history, the report archive and
// metrics. Any of them may be nil. Recording failures are logged and never
// fail the check.
type RecordingChecker struct {
	inner   Checker
	history HistoryStore
	archive ReportArchive
	metrics CheckMetrics
	log     *logger.Logger
}

// NewRecordingChecker wraps inner.
func NewRecordingChecker(inner Checker, history HistoryStore, archive ReportArchive, metrics CheckMetrics) *RecordingChecker {
	return &RecordingChecker{
		inner:   inner,
		history: history,
		archive: archive,
		metrics: metrics,
		log:     logger.Default().WithComponent("safety"),
	}
}

// Source implements Named.
func (c *RecordingChecker) Source() string { return SourceOf(c.inner) }

func (c *RecordingChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	source := c.Source()
	start := time.Now()

	result, err := c.inner.Check(ctx, videoID)
	duration := time.Since(start)
	if err != nil {
		code := apperrors.CodeInternalError
		if appErr, ok := apperrors.As(err); ok {
			code = appErr.Code
		}
		if c.metrics != nil {
			c.metrics.RecordCheckFailure(source, code, duration)
		}
		c.log.Error(ctx, "content check failed", err, map[string]any{
			"video_id":    videoID,
			"source":      source,
			"duration_ms": duration.Milliseconds(),
		})
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordCheck(source, result.IsSafe, duration)
	}
	if !result.Consistent() {
		if c.metrics != nil {
			c.metrics.InconsistentResult(source)
		}
		c.log.Warn(ctx, "unsafe verdict without flagged categories", map[string]any{
			"video_id": videoID,
			"source":   source,
		})
	}

	c.record(ctx, source, result)
	return result, nil
}

func (c *RecordingChecker) record(ctx context.Context, source string, result *Result) {
	if c.history == nil && c.archive == nil {
		return
	}

	// The check has already succeeded; recording outlives a cancelled request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	now := time.Now().UTC()
	requestID := apperrors.GetRequestID(ctx)

	if c.history != nil {
		rec := &db.CheckRecord{
			VideoID:   result.VideoID,
			IsSafe:    result.IsSafe,
			Title:     result.Title,
			Flags:     result.Flags(),
			Source:    source,
			RequestID: requestID,
			CheckedAt: now,
		}
		if err := c.history.SaveCheck(ctx, rec); err != nil {
			c.fail(ctx, "history", result.VideoID, err)
		}
	}

	if c.archive != nil {
		data, err := json.Marshal(Report{
			Result:    result,
			Source:    source,
			CheckedAt: now,
			RequestID: requestID,
		})
		if err == nil {
			err = c.archive.PutReport(ctx, result.VideoID, data)
		}
		if err != nil {
			c.fail(ctx, "archive", result.VideoID, err)
		}
	}
}

func (c *RecordingChecker) fail(ctx context.Context, sink, videoID string, err error) {
	if c.metrics != nil {
		c.metrics.RecordFailure(sink)
	}
	c.log.Error(ctx, "failed to record content check", err, map[string]any{
		"sink":     sink,
		"video_id": videoID,
	})
}
