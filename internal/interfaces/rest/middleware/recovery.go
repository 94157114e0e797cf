package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recovery answers a panicking handler with the internal_error envelope and
// logs the stack under the request id. http.ErrAbortHandler is re-raised for
// net/http to handle.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("handler panicked",
					"request_id", chimw.GetReqID(r.Context()),
					"route", r.Method+" "+r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				rest.WriteError(w, application.NewInternalError(fmt.Errorf("handler panicked: %v", rec)), logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
