package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNotFound        = errors.New("not_found")
	ErrEmailExists     = errors.New("email_exists")
	ErrInvalidRating   = errors.New("invalid_rating")
	ErrAlreadyRated    = errors.New("already_rated")
	ErrPropertyTaken   = errors.New("property_taken")
	ErrDuplicateDeal   = errors.New("duplicate_deal")
	ErrCustomerHasDeal = errors.New("customer_has_deals")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFoundError builds the standard 404 AppError for a missing entity.
func NotFoundError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       ErrCodeNotFound,
		Message:    message,
		Err:        ErrNotFound,
	}
}

// ConflictError builds the standard 409 AppError.
func ConflictError(message string, cause error) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Code:       ErrCodeConflict,
		Message:    message,
		Err:        cause,
	}
}

// ValidationError builds the standard 400 AppError. Nothing has been
// mutated when a service returns one.
func ValidationError(message string, cause error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeValidation,
		Message:    message,
		Err:        cause,
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
