package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrBadRequest       = errors.New("bad request")

	// Profile errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Workflow errors
var (
	// ErrInvalidTransition is a precondition failure: the action is not allowed from the current status
	ErrInvalidTransition = errors.New("action not allowed in the current status")
	// ErrDuplicateApplication is the uniqueness conflict on (student, academic year)
	ErrDuplicateApplication = errors.New("you already have a dossier for this academic year")
	// ErrNoCurrentAcademicYear is returned when no academic year is flagged as current
	ErrNoCurrentAcademicYear = errors.New("no current academic year")
	// ErrPartialFailure marks a multi-step operation that stopped after some steps were applied
	ErrPartialFailure = errors.New("operation partially applied")
)

// File errors
var (
	ErrUnsupportedFileType = errors.New("only PDF files are accepted")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation failure with a user facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewPartialFailureError reports the step at which a multi-step operation stopped
func NewPartialFailureError(step string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrPartialFailure, cause),
		Message: "operation failed at step: " + step,
		Code:    step,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// UserMessage returns the message to show to an end user, if err carries one
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
