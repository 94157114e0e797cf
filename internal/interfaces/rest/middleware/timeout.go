package middleware

import (
	"context"
	"net/http"
	"time"
)

const timeoutBody = `{"ok":false,"error":"request_processing"}`

// Timeout bounds every request. Handlers see the deadline through the
// request context, so a duplicate order waiting on an in-flight one gives up
// before the writer does.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timeoutHandler := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			timeoutHandler.ServeHTTP(&jsonTimeoutWriter{ResponseWriter: w}, r.WithContext(ctx))
		})
	}
}

// jsonTimeoutWriter labels the canned timeout body. http.TimeoutHandler
// copies the handler's own headers before writing a finished response, so
// only the timeout reply reaches WriteHeader without a Content-Type.
type jsonTimeoutWriter struct {
	http.ResponseWriter
}

func (w *jsonTimeoutWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *jsonTimeoutWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
