package errors

import (
	"context"
	stderrors "errors"
	"net/http"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Handler is an HTTP handler that reports failures by returning them.
type Handler func(w http.ResponseWriter, r *http.Request) error

// HandleFunc adapts h to http.HandlerFunc, writing returned errors as the
// JSON error envelope. Nothing is written once the client has gone away.
func HandleFunc(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		if stderrors.Is(err, context.Canceled) && r.Context().Err() != nil {
			return
		}
		WriteError(w, GetRequestID(r.Context()), err)
	}
}
