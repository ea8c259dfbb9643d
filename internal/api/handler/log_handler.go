package handler

import (
	"net/http"

	"msgboard/internal/app/service"
	"msgboard/internal/common"
	"msgboard/internal/logging"
)

type LogHandler struct {
	logService *service.LogService
	log        logging.Logger
	production bool
}

func NewLogHandler(ls *service.LogService, log logging.Logger, production bool) *LogHandler {
	return &LogHandler{logService: ls, log: log, production: production}
}

// ListLogs serves GET /api/logs?level=. Mount it behind Authenticator and AdminOnly.
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logService.List(r.Context(), r.URL.Query().Get("level"))
	if err != nil {
		if common.HTTPStatusFromError(err) == http.StatusNotFound {
			h.log.Warn(r.Context(), "log source unavailable", "err", err)
		}
		respondErr(w, r, h.log, err, h.production)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
