package safety

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ytsafecheck/backend/internal/db"
	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/storage"
	"github.com/ytsafecheck/backend/internal/youtube"
)

// HistoryReader lists recorded checks. *db.CheckRepository implements it.
type HistoryReader interface {
	RecentChecks(ctx context.Context, limit int, videoID string) ([]db.CheckRecord, error)
}

// ReportLocator resolves download URLs for archived reports.
// *storage.Reports implements it.
type ReportLocator interface {
	ReportURL(ctx context.Context, videoID string) (*storage.PresignedURL, error)
}

// Handlers provides HTTP handlers for content checks
type Handlers struct {
	checker Checker
	history HistoryReader
	reports ReportLocator
}

// NewHandlers creates a new Handlers instance. history and reports may be
// nil when those features are not configured.
func NewHandlers(checker Checker, history HistoryReader, reports ReportLocator) *Handlers {
	return &Handlers{
		checker: checker,
		history: history,
		reports: reports,
	}
}

// CheckRequest is the request body for a content check. URL is accepted
// when VideoID is empty.
type CheckRequest struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url,omitempty"`
}

// HistoryResponse lists recent checks
type HistoryResponse struct {
	Checks []db.CheckRecord `json:"checks"`
	Count  int              `json:"count"`
}

// ReportResponse points at an archived report
type ReportResponse struct {
	VideoID string `json:"videoId"`
	storage.PresignedURL
}

// Check handles POST /api/v1/check
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) error {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid JSON body").WithCause(err)
	}

	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" && strings.TrimSpace(req.URL) != "" {
		id, ok := youtube.ExtractVideoID(strings.TrimSpace(req.URL))
		if !ok {
			return apperrors.InvalidVideoURL(youtube.MsgInvalidURL).
				WithDetails(map[string]any{"url": req.URL})
		}
		videoID = id
	}
	if videoID == "" {
		return apperrors.ValidationError("videoId or url is required")
	}

	result, err := h.checker.Check(r.Context(), videoID)
	if err != nil {
		return err
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, result)
	return nil
}

// History handles GET /api/v1/checks/history
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) error {
	if h.history == nil {
		return apperrors.FeatureDisabled("check history")
	}

	query := r.URL.Query()
	limit := 0
	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return apperrors.ValidationError("limit must be a non-negative integer")
		}
		limit = n
	}

	checks, err := h.history.RecentChecks(r.Context(), limit, query.Get("video_id"))
	if err != nil {
		return apperrors.DatabaseError("failed to load check history").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, HistoryResponse{
		Checks: checks,
		Count:  len(checks),
	})
	return nil
}

// Report handles GET /api/v1/reports/{video_id}
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) error {
	if h.reports == nil {
		return apperrors.FeatureDisabled("report archive")
	}

	videoID := r.PathValue("video_id")
	if videoID == "" {
		return apperrors.ValidationError("video_id is required")
	}

	signed, err := h.reports.ReportURL(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.ReportNotFound().WithDetails(map[string]any{"video_id": videoID})
		}
		return apperrors.StorageError("failed to locate report").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, ReportResponse{
		VideoID:      videoID,
		PresignedURL: *signed,
	})
	return nil
}
