package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// NewStructuredLogger logs one line per request with the caller and the chi request ID when known.
func NewStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			// Filled in by the authenticator further down the chain.
			var caller string
			next.ServeHTTP(tww, r.WithContext(withCallerSink(r.Context(), &caller)))

			status := tww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			requestAttrs := slog.Group("request",
				slog.String("id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_id", caller),
			)
			responseAttrs := slog.Group("response",
				slog.Int("status", status),
				slog.Int("bytes", tww.BytesWritten()),
				slog.String("latency", time.Since(start).String()),
			)

			if status >= 500 {
				logger.Error("server error", requestAttrs, responseAttrs)
			} else {
				logger.Info("request completed", requestAttrs, responseAttrs)
			}
		}
		return http.HandlerFunc(fn)
	}
}
