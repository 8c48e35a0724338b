package handler

// RESPONSE HELPERS:
// Every endpoint answers JSON through writeJSON, and every failure goes
// through writeError so the error body always has the same shape:
//
//	{"error": "not_found", "message": "snippet not found with id abc123"}
//
// The "error" code is machine-readable; "message" is safe to show a user.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/auth"
	"github.com/sakif/sql-manager/internal/model"
)

// maxBodyBytes caps request bodies. Snippet content is the largest field.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse acknowledges an operation that has nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends data with the given status. Headers must be set before
// WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error to its HTTP status and error code.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400 validation_error
//	ErrConflict     → 400 conflict (duplicates are a client input problem here)
//	ErrUnauthorized → 401 authentication_required
//	ErrForbidden    → 403 forbidden
//	ErrNotFound     → 404 not_found
//	anything else   → 500 internal_error
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication_required"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError translates a service error into an HTTP response.
//
// Only AppError.Message ever reaches the client. Anything that isn't an
// AppError is an internal failure: it is logged in full and the client gets
// a generic message, since raw errors can carry SQL or file paths.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	status, code := statusFor(err)
	writeJSON(w, status, ErrorResponse{Error: code, Message: appErr.Message})
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", "request body is too large")
		}
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// caller returns the user RequireAuth stored for this request. Routes
// behind RequireAuth always have one; the 401 branch guards against a
// handler being mounted outside the gate.
func caller(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_required",
			Message: "valid authentication required",
		})
		return nil, false
	}
	return user, true
}
