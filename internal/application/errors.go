package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
)

// ServiceError is an orchestration failure that already knows how it should
// be reported to an HTTP caller.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeBadRequest,
		Message:    "invalid request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewInvalidSignatureError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeInvalidSignature,
		Message:    "launch data signature is invalid",
		HTTPStatus: http.StatusForbidden,
		Err:        err,
	}
}

func NewNoUserError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeNoUser,
		Message:    "user could not be resolved",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewInvoiceFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeInvoiceFailed,
		Message:    "invoice could not be created",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewNotifyFailedError() *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeNotifyFailed,
		Message:    "notification could not be delivered",
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewUnauthorizedError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeUnauthorized,
		Message:    "unauthorized",
		HTTPStatus: http.StatusForbidden,
		Err:        err,
	}
}

func NewRequestProcessingError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeRequestProcessing,
		Message:    "request is being processed, retry in a moment",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       domain.ErrCodeInternal,
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
