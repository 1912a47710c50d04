package session

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

// Handlers provides HTTP handlers for view sessions
type Handlers struct {
	store *Store
}

// NewHandlers creates a new Handlers instance
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// SubmitRequest is the request body for a submission
type SubmitRequest struct {
	URL string `json:"url"`
}

// SubmitResponse wraps an outcome with the error code of a failed check
type SubmitResponse struct {
	*Outcome
	ErrorCode string `json:"errorCode,omitempty"`
}

// Create handles POST /api/v1/sessions
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	s := h.store.Create()
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusCreated, s.State())
	return nil
}

// Get handles GET /api/v1/sessions/{id}
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) error {
	s, err := h.lookup(r)
	if err != nil {
		return err
	}
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, s.State())
	return nil
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if !h.store.Delete(id) {
		return apperrors.SessionNotFound().WithDetails(map[string]any{"session_id": id})
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Submit handles POST /api/v1/sessions/{id}/submit
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) error {
	s, err := h.lookup(r)
	if err != nil {
		return err
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid JSON body").WithCause(err)
	}

	out := h.store.Submit(apperrors.WithSessionID(r.Context(), s.ID()), s, req.URL)

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), statusFor(out.Kind), SubmitResponse{
		Outcome:   out,
		ErrorCode: out.ErrorCode(),
	})
	return nil
}

func (h *Handlers) lookup(r *http.Request) (*Session, error) {
	id := r.PathValue("id")
	s, ok := h.store.Get(id)
	if !ok {
		return nil, apperrors.SessionNotFound().WithDetails(map[string]any{"session_id": id})
	}
	return s, nil
}

func statusFor(kind OutcomeKind) int {
	switch kind {
	case OutcomeRejected:
		return http.StatusBadRequest
	case OutcomeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
