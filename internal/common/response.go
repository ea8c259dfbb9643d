package common

import (
	"encoding/json"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Error     string       `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

// RespondWithError writes {"error": message} tagged with the request id.
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:     message,
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})
}

// RespondWithErr classifies err and writes the matching status and body.
func RespondWithErr(w http.ResponseWriter, r *http.Request, err error, production bool) {
	RespondWithJSON(w, HTTPStatusFromError(err), ErrorResponse{
		Error:     ClientMessage(err, production),
		RequestID: chiMiddleware.GetReqID(r.Context()),
		Details:   FieldsFromError(err),
	})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
