package middleware

import (
	"net/http"
	"time"

	"msgboard/internal/logging"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request and echoes the request id in the
// X-Request-Id response header. It must run after chi's RequestID.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chiMiddleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set(chiMiddleware.RequestIDHeader, reqID)
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				args := []any{
					logging.RequestIDKey, reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote_addr", r.RemoteAddr,
				}
				switch {
				case status >= http.StatusInternalServerError:
					log.Error(r.Context(), "request completed", args...)
				case status >= http.StatusBadRequest:
					log.Warn(r.Context(), "request completed", args...)
				default:
					log.Info(r.Context(), "request completed", args...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
