package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
	"github.com/getkin/kin-openapi/openapi3"
)

// MaxBodyBytes caps request bodies read by ValidateBody.
const MaxBodyBytes = 1 << 20

// ValidateBody checks the JSON body against schema before the handler runs.
// The body is buffered and handed on unchanged, since webhook signatures are
// computed over the raw bytes.
func ValidateBody(schema *openapi3.Schema, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				rest.WriteError(w, application.NewBadRequestError(fmt.Errorf("read body: %w", err)), logger)
				return
			}
			r.Body.Close()

			var value any
			if err := json.Unmarshal(body, &value); err != nil {
				rest.WriteError(w, application.NewBadRequestError(fmt.Errorf("decode body: %w", err)), logger)
				return
			}
			if err := schema.VisitJSON(value); err != nil {
				rest.WriteError(w, application.NewBadRequestError(err), logger)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
