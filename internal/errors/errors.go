package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType groups errors by how they are reported to callers.
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeCorruptFile       ErrorType = "corrupt_file"
	ErrorTypeModelCall         ErrorType = "model_call"
	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeInternal          ErrorType = "internal"
)

// Common error codes
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidCriteria   = "INVALID_CRITERIA"
	ErrCodeMissingFile       = "MISSING_FILE"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeTooManyFiles      = "TOO_MANY_FILES"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeCorruptFile       = "CORRUPT_FILE"
	ErrCodeEmptyDocument     = "EMPTY_DOCUMENT"
	ErrCodeModelCallFailed   = "MODEL_CALL_FAILED"
	ErrCodeModelUnavailable  = "MODEL_UNAVAILABLE"
	ErrCodeInvalidModelReply = "INVALID_MODEL_RESPONSE"
	ErrCodeAllResumesFailed  = "ALL_RESUMES_FAILED"
	ErrCodeMissingAPIKey     = "MISSING_API_KEY"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeRunNotFound       = "RUN_NOT_FOUND"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeReportFailed      = "REPORT_FAILED"
)

// AppError is the structured error returned by services and rendered by the HTTP layer.
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair that is logged alongside the error.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error type to the status code the API answers with.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case ErrorTypeCorruptFile:
		return http.StatusUnprocessableEntity
	case ErrorTypeModelCall:
		return http.StatusBadGateway
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewUnsupportedFormatError(fileName, ext string) *AppError {
	return newAppError(ErrorTypeUnsupportedFormat, ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported file format %q for %s: only .pdf and .docx are accepted", ext, fileName), nil).
		WithContext("file_name", fileName)
}

func NewCorruptFileError(code, fileName string, cause error) *AppError {
	return newAppError(ErrorTypeCorruptFile, code,
		fmt.Sprintf("could not read text from %s", fileName), cause).
		WithContext("file_name", fileName)
}

func NewModelCallError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeModelCall, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewNotFoundError(code, message string) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, nil)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, typ ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == typ
}
