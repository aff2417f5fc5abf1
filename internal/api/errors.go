package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
	"github.com/netreg/netreg-core/internal/device"
	"github.com/netreg/netreg-core/internal/group"
	"github.com/netreg/netreg-core/internal/tenant"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a service-layer error to the HTTP response.
//
// Distinctions that matter here: a rejected payload (unknown tenant or
// group name) is 400, a policy denial is 403 carrying its reason, a
// missing resource is 404. Anything unmapped is a 500 with a generic
// body; the underlying error is logged, never echoed to the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *device.ValidationError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, invalid.Error())
		return
	}

	var denied *authz.DeniedError
	if errors.As(err, &denied) {
		writeForbidden(w, denied.Reason)
		return
	}

	switch {
	case isNotFound(err):
		writeNotFound(w, err.Error())
	case errors.Is(err, group.ErrGroupExists), errors.Is(err, auth.ErrUsernameExists):
		writeConflict(w, err.Error())
	case errors.Is(err, tenant.ErrNameRequired), errors.Is(err, group.ErrNameRequired):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, tenant.ErrTenantNotFound) ||
		errors.Is(err, group.ErrGroupNotFound) ||
		errors.Is(err, device.ErrDeviceNotFound) ||
		errors.Is(err, auth.ErrUserNotFound)
}

func isInactive(err error) bool {
	return errors.Is(err, auth.ErrUserInactive)
}
