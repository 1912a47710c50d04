package youtube

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

// Handlers provides HTTP handlers for URL validation and previews
type Handlers struct {
	validator *Validator
}

// NewHandlers creates a new Handlers instance
func NewHandlers(validator *Validator) *Handlers {
	if validator == nil {
		validator = NewValidator()
	}
	return &Handlers{validator: validator}
}

// ValidateURLRequest is the request body for URL validation
type ValidateURLRequest struct {
	URL string `json:"url"`
}

// ValidateURL handles POST /api/v1/validate/url
func (h *Handlers) ValidateURL(w http.ResponseWriter, r *http.Request) error {
	var req ValidateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid JSON body").WithCause(err)
	}
	return h.writeValidation(w, r, req.URL, "url field is required")
}

// ValidateURLQuery handles GET /api/v1/validate/url?url=...
func (h *Handlers) ValidateURLQuery(w http.ResponseWriter, r *http.Request) error {
	return h.writeValidation(w, r, r.URL.Query().Get("url"), "url query parameter is required")
}

func (h *Handlers) writeValidation(w http.ResponseWriter, r *http.Request, rawURL, missing string) error {
	if strings.TrimSpace(rawURL) == "" {
		return apperrors.ValidationError(missing)
	}

	result := h.validator.Validate(rawURL)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), status, result)
	return nil
}

// Preview handles GET /api/v1/videos/{video_id}/preview
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) error {
	videoID := r.PathValue("video_id")
	if videoID == "" {
		return apperrors.ValidationError("video_id is required")
	}
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, NewPreview(videoID))
	return nil
}
