package response

import (
	"errors"
	"net/http"

	"tariff-backend/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string                 `json:"status"`         // "success" or "error"
	StatusCode int                    `json:"status_code"`    // HTTP status code
	Code       string                 `json:"code,omitempty"` // error kind, e.g. DATE_RANGE_VIOLATION
	Data       interface{}            `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// StatusFor maps an error kind onto its HTTP status; errors without a kind are 500s.
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindDateRangeViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the error envelope for err. Unkinded errors are reported with fallback
// instead of their text so infrastructure details stay in the logs.
func FromError(err error, fallback string) (int, Response) {
	status := StatusFor(err)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return status, Error(status, fallback)
	}

	res := Error(status, appErr.Message)
	res.Code = string(appErr.Kind)
	res.Details = appErr.Context
	return status, res
}
