package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
)

// RequireToken rejects requests whose header does not carry token before the
// body is read. An empty token disables the check.
func RequireToken(header, token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(header)), []byte(token)) != 1 {
				err := application.NewUnauthorizedError(errors.New(header + " mismatch"))
				rest.WriteError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
