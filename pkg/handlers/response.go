package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// ApiResponse wraps every successful payload.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeSuccess wraps data in an ApiResponse.
func writeSuccess(w http.ResponseWriter, logger *zap.Logger, statusCode int, data any) {
	if err := WriteJSON(w, statusCode, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// errorStatus maps a core error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, apperrors.ErrUnsupportedDialect):
		return http.StatusBadRequest, "unsupported_dialect"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConnectionInUse):
		return http.StatusConflict, "connection_in_use"
	case errors.Is(err, apperrors.ErrConnection):
		return http.StatusServiceUnavailable, "connection_unavailable"
	case errors.Is(err, apperrors.ErrSQLExecution):
		return http.StatusUnprocessableEntity, "sql_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps err to a status code and writes a sanitized message.
// Internal errors are logged; their details are not returned.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, code := errorStatus(err)
	message := logging.SanitizeError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("op", op), zap.String("error", message))
		message = "internal error"
	}
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
