package apperror

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes returned to API clients.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodePaymentRequired      = "PAYMENT_REQUIRED"
	CodeAssetsNotReady       = "ASSETS_NOT_READY"
	CodeProjectFinalized     = "PROJECT_FINALIZED"
	CodeGenerationInProgress = "GENERATION_IN_PROGRESS"
	CodeInsufficientCredits  = "INSUFFICIENT_CREDITS"
	CodeInvalidPlan          = "INVALID_PLAN"
	CodeScrapeTimeout        = "SCRAPE_TIMEOUT"
	CodeScrapeError          = "SCRAPE_ERROR"
	CodeExtractionParse      = "EXTRACTION_PARSE_ERROR"
	CodeVideoGeneration      = "VIDEO_GENERATION_ERROR"
	CodeStorage              = "STORAGE_ERROR"
	CodeSignatureInvalid     = "SIGNATURE_INVALID"
	CodeInternal             = "INTERNAL_ERROR"
)

// AppError is the typed error every service and capability adapter returns.
// Status is the HTTP-equivalent class; handlers map it to a transport code.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func Wrap(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(400, CodeValidation, message)
}

func NotFound(message string) *AppError {
	return New(404, CodeNotFound, message)
}

func Precondition(code, message string) *AppError {
	return New(400, code, message)
}

func PaymentRequired(message string) *AppError {
	return New(402, CodePaymentRequired, message)
}

func Upstream(code, message string, err error) *AppError {
	return Wrap(502, code, message, err)
}

func Internal(message string, err error) *AppError {
	return Wrap(500, CodeInternal, message, err)
}

// From normalizes any error into an *AppError, wrapping unclassified
// errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error", err)
}

// HasCode reports whether err carries the given machine code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
