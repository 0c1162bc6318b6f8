// Package errors provides custom error types for the Scripfolio API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Upload errors. A structural error kills a single file; the whole preview
// fails only when no file yields usable rows.
var (
	ErrUploadUnreadable = &AppError{Code: "UPLOAD_UNREADABLE", Message: "Could not read uploaded file", StatusCode: http.StatusBadRequest}
	ErrMissingColumns   = &AppError{Code: "MISSING_COLUMNS", Message: "Uploaded file is missing required columns", StatusCode: http.StatusBadRequest}
	ErrNoUsableRows     = &AppError{Code: "NO_USABLE_ROWS", Message: "No usable rows could be parsed from the uploaded files", StatusCode: http.StatusBadRequest}
)

// Staging errors. The user must re-preview after any of these.
var (
	ErrStagingNotFound  = &AppError{Code: "STAGING_NOT_FOUND", Message: "Staging batch not found", StatusCode: http.StatusNotFound}
	ErrStagingExpired   = &AppError{Code: "STAGING_EXPIRED", Message: "Staging batch has expired", StatusCode: http.StatusGone}
	ErrAlreadyCommitted = &AppError{Code: "ALREADY_COMMITTED", Message: "This staging batch is already committed", StatusCode: http.StatusConflict}
	ErrBatchDiscarded   = &AppError{Code: "BATCH_DISCARDED", Message: "This staging batch was discarded", StatusCode: http.StatusConflict}
	ErrProgressNotFound = &AppError{Code: "PROGRESS_NOT_FOUND", Message: "No progress recorded for this correlation id", StatusCode: http.StatusNotFound}
)

// Split event errors.
var (
	ErrSplitNotFound     = &AppError{Code: "SPLIT_NOT_FOUND", Message: "Split event not found", StatusCode: http.StatusNotFound}
	ErrInvalidSplitRatio = &AppError{Code: "INVALID_SPLIT_RATIO", Message: "Split ratios must both be positive", StatusCode: http.StatusBadRequest}
)

// Report errors.
var (
	ErrInvalidFYLabel = &AppError{Code: "INVALID_FY_LABEL", Message: "Financial year must look like FY2025", StatusCode: http.StatusBadRequest}
)
