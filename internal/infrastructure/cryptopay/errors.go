package cryptopay

import (
	"errors"
	"fmt"
)

// GatewayError is any failure to get a usable answer from Crypto Pay:
// transport, timeout, HTTP status, API level error or an unusable body.
type GatewayError struct {
	Op         string
	Code       string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("cryptopay %s failed", e.Op)
	if e.Code != "" {
		msg += fmt.Sprintf(" [%s]", e.Code)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status: %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
