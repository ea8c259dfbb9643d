package handler

import (
	"net/http"

	"msgboard/internal/common"
	"msgboard/internal/logging"
)

// respondErr writes err to the client and logs it server-side when it is a 5xx.
func respondErr(w http.ResponseWriter, r *http.Request, log logging.Logger, err error, production bool) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	common.RespondWithErr(w, r, err, production)
}
