package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/go-playground/validator"
)

var validate = validator.New()

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// DecodeJSON reads a JSON body into dst and runs struct validation on it.
// Both failures are reported as bad requests.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return application.NewBadRequestError(fmt.Errorf("decode body: %w", err))
	}
	if err := validate.Struct(dst); err != nil {
		return application.NewBadRequestError(err)
	}
	return nil
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError maps application errors to HTTP responses. Only the machine
// tag leaves the process; the cause is logged.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	if logger != nil {
		if statusCode >= http.StatusInternalServerError {
			logger.Error("request failed", "code", errorCode, "status", statusCode, "error", err)
		} else {
			logger.Warn("request rejected", "code", errorCode, "status", statusCode, "error", err)
		}
	}

	WriteJSON(w, statusCode, ErrorResponse{OK: false, Error: errorCode}, logger)
}
