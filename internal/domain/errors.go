package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Machine readable error tags. These travel to clients verbatim.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeInvalidSignature  = "invalid_signature"
	ErrCodeNoUser            = "no_user"
	ErrCodeInvoiceFailed     = "invoice_failed"
	ErrCodeNotifyFailed      = "notify_failed"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeRequestProcessing = "request_processing"
	ErrCodeInternal          = "internal_error"
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFieldError(field string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("invalid %s", field),
		Err:     err,
	}
}

func NewInvalidSignatureError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: "launch data signature is invalid",
	}
}

func NewNoUserError() *DomainError {
	return &DomainError{
		Code:    ErrCodeNoUser,
		Message: "user could not be resolved",
	}
}

func NewUnauthorizedError(source string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: fmt.Sprintf("%s rejected", source),
	}
}

func NewRequestProcessingError() *DomainError {
	return &DomainError{
		Code:    ErrCodeRequestProcessing,
		Message: "request is being processed",
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
