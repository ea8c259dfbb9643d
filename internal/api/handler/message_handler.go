package handler

import (
	"net/http"

	"msgboard/internal/app/service"
	"msgboard/internal/common"
	"msgboard/internal/logging"

	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	messageService *service.MessageService
	log            logging.Logger
	production     bool
}

func NewMessageHandler(ms *service.MessageService, log logging.Logger, production bool) *MessageHandler {
	return &MessageHandler{messageService: ms, log: log, production: production}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listMessages)    // GET /api/messages
	r.Post("/", h.createMessage) // POST /api/messages
}

func (h *MessageHandler) createMessage(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messageService.Create(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *MessageHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messageService.List(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, msgs)
}
