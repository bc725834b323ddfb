package routes

import (
	"errors"
	"net/http"

	"daily-worklog/internal/daylog"
	"daily-worklog/internal/syncer"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Message    string // User-friendly message
	Internal   bool   // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Message string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors (that don't conflict with other packages)
var (
	// Validation errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidDayKey  = errors.New("invalid day key")

	// Configuration errors
	ErrStorageNotConfigured = errors.New("primary store not configured")

	// Internal errors
	ErrInternalServer = errors.New("internal server error")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:     http.StatusBadRequest,
	ErrInvalidDayKey:      http.StatusBadRequest,
	daylog.ErrUnknownSlot: http.StatusBadRequest,

	// 409 Conflict
	daylog.ErrSlotOccupied:    http.StatusConflict,
	daylog.ErrSlotNotEligible: http.StatusConflict,

	// 423 Locked
	syncer.ErrDayLocked:   http.StatusLocked,
	syncer.ErrPunchLocked: http.StatusLocked,

	// 500 Internal Server Error
	ErrStorageNotConfigured:      http.StatusInternalServerError,
	ErrInternalServer:            http.StatusInternalServerError,
	syncer.ErrPrimaryWriteFailed: http.StatusInternalServerError,

	// 503 Service Unavailable
	syncer.ErrBaselineUnavailable: http.StatusServiceUnavailable,
}

// errorInfoMap maps errors to user-friendly messages
var errorInfoMap = map[error]ErrorInfo{
	ErrInvalidRequest:     {Message: "Invalid request format"},
	ErrInvalidDayKey:      {Message: "Day key must be a YYYY-MM-DD calendar date"},
	daylog.ErrUnknownSlot: {Message: "Unknown punch slot"},

	daylog.ErrSlotOccupied:    {Message: "That slot was already punched"},
	daylog.ErrSlotNotEligible: {Message: "That slot is not open yet"},

	syncer.ErrDayLocked:   {Message: "This day is read-only"},
	syncer.ErrPunchLocked: {Message: "This punch can no longer be edited"},

	// Internal (generic wording only)
	ErrStorageNotConfigured:       {Message: "Storage service is not available"},
	ErrInternalServer:             {Message: "An internal error occurred"},
	syncer.ErrPrimaryWriteFailed:  {Message: "Saving the log failed, please retry"},
	syncer.ErrBaselineUnavailable: {Message: "The stored log could not be read, nothing was saved"},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	// Check if it's already an HTTPError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	// Check direct match
	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	// Check if error wraps a known error
	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	// Default to 500 Internal Server Error
	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including the user-facing message
func GetErrorInfo(err error) ErrorInfo {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{Message: httpErr.Message}
	}

	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for knownErr, info := range errorInfoMap {
		if errors.Is(err, knownErr) {
			return info
		}
	}

	// For unknown errors, return a generic message for 5xx, specific for others
	status := GetErrorStatus(err)
	if status >= 500 {
		return ErrorInfo{Message: "An internal error occurred"}
	}
	return ErrorInfo{Message: err.Error()}
}

// GetErrorMessage returns a user-friendly message for an error
func GetErrorMessage(err error) string {
	return GetErrorInfo(err).Message
}
