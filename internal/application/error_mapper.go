package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
)

var domainStatus = map[string]int{
	domain.ErrCodeBadRequest:        http.StatusBadRequest,
	domain.ErrCodeInvalidSignature:  http.StatusForbidden,
	domain.ErrCodeNoUser:            http.StatusBadRequest,
	domain.ErrCodeInvoiceFailed:     http.StatusInternalServerError,
	domain.ErrCodeNotifyFailed:      http.StatusInternalServerError,
	domain.ErrCodeUnauthorized:      http.StatusForbidden,
	domain.ErrCodeRequestProcessing: http.StatusConflict,
	domain.ErrCodeInternal:          http.StatusInternalServerError,
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := domainStatus[domainErr.Code]; ok {
			return status
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// ToErrorCode returns the machine readable tag sent to clients.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if _, ok := domainStatus[domainErr.Code]; ok {
			return domainErr.Code
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrCodeRequestProcessing
	}

	return domain.ErrCodeInternal
}
