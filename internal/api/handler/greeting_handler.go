package handler

import (
	"net/http"

	"msgboard/internal/api/middleware"
	"msgboard/internal/common"
)

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func Hello(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello from the backend!"})
}

// Protected greets any authenticated user.
func Protected(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, r, http.StatusUnauthorized, "Missing user context")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello " + user.Username + "!"})
}

// Admin greets an administrator.
func Admin(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, r, http.StatusUnauthorized, "Missing user context")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello admin " + user.Username + "!"})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	common.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
