package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"msgboard/internal/common"
	"msgboard/internal/logging"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a panic into a logged 500 with the usual JSON error body.
func Recoverer(log logging.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				log.Error(r.Context(), "panic recovered",
					logging.RequestIDKey, chiMiddleware.GetReqID(r.Context()),
					"panic", fmt.Sprint(rvr),
					"stack", string(debug.Stack()),
				)
				msg := "Internal server error"
				if !production {
					msg = fmt.Sprint(rvr)
				}
				common.RespondWithError(w, r, http.StatusInternalServerError, msg)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
