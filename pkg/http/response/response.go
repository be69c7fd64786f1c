package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageBody is returned by endpoints that only confirm an action.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Error writes an ErrorBody.
func Error(w http.ResponseWriter, status int, msg, details string) {
	JSON(w, status, ErrorBody{Error: msg, Details: details})
}

// Message writes a MessageBody with status 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, MessageBody{Message: msg})
}

// BadRequest reports an undecodable or invalid request. A body cut off by
// http.MaxBytesReader is reported as 413 instead.
func BadRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		TooLarge(w, tooLarge.Limit)
		return
	}
	Error(w, http.StatusBadRequest, "invalid request", err.Error())
}

// TooLarge reports a request body over limit bytes.
func TooLarge(w http.ResponseWriter, limit int64) {
	Error(w, http.StatusRequestEntityTooLarge, "request too large", fmt.Sprintf("body exceeds %d bytes", limit))
}

// Forbidden is sent to authenticated callers lacking the admin role.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Forbidden.", "")
}

// FromError maps domain errors to a status code. Unknown errors are logged
// and reported as a 500 without details.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ferr     *apperr.FieldError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		TooLarge(w, tooLarge.Limit)
	case errors.As(err, &ferr):
		Error(w, http.StatusBadRequest, "invalid request", ferr.Error())
	case errors.Is(err, apperr.ErrInvalidInput):
		BadRequest(w, err)
	case errors.Is(err, apperr.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", "")
	case errors.Is(err, apperr.ErrConflict):
		Error(w, http.StatusConflict, "already exists", "")
	case errors.Is(err, apperr.ErrInUse):
		Error(w, http.StatusConflict, "still referenced", err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(w)
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "server error", "")
	}
}
