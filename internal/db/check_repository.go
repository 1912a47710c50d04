package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrCheckNotFound = errors.New("content check not found")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// CheckRecord is one row of check history
type CheckRecord struct {
	ID        uuid.UUID `json:"id"`
	VideoID   string    `json:"videoId"`
	IsSafe    bool      `json:"isSafe"`
	Title     string    `json:"title,omitempty"`
	Flags     []string  `json:"flags"`
	Source    string    `json:"source"`
	RequestID string    `json:"requestId,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

type CheckRepository struct {
	db *DB
}

func NewCheckRepository(db *DB) *CheckRepository {
	return &CheckRepository{db: db}
}

// SaveCheck inserts a record, filling in ID and CheckedAt when unset
func (r *CheckRepository) SaveCheck(ctx context.Context, rec *CheckRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now().UTC()
	}
	if rec.Flags == nil {
		rec.Flags = []string{}
	}

	query := `
		INSERT INTO content_checks (id, video_id, is_safe, title, flags, source, request_id, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.VideoID, rec.IsSafe, rec.Title, pq.Array(rec.Flags), rec.Source, rec.RequestID, rec.CheckedAt,
	)
	return err
}

// RecentChecks returns the newest checks, optionally for one video
func (r *CheckRepository) RecentChecks(ctx context.Context, limit int, videoID string) ([]CheckRecord, error) {
	limit = clampLimit(limit)

	query := `
		SELECT id, video_id, is_safe, title, flags, source, request_id, checked_at
		FROM content_checks
		WHERE ($1 = '' OR video_id = $1)
		ORDER BY checked_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, videoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]CheckRecord, 0, limit)
	for rows.Next() {
		var rec CheckRecord
		if err := rows.Scan(
			&rec.ID, &rec.VideoID, &rec.IsSafe, &rec.Title, pq.Array(&rec.Flags),
			&rec.Source, &rec.RequestID, &rec.CheckedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestCheck returns the newest check for a video
func (r *CheckRepository) LatestCheck(ctx context.Context, videoID string) (*CheckRecord, error) {
	records, err := r.RecentChecks(ctx, 1, videoID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrCheckNotFound
	}
	return &records[0], nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
