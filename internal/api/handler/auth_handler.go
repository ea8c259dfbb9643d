package handler

import (
	"net/http"

	"msgboard/internal/api/middleware"
	"msgboard/internal/app/service"
	"msgboard/internal/common"
	"msgboard/internal/logging"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	log         logging.Logger
	production  bool
}

func NewAuthHandler(authService *service.AuthService, log logging.Logger, production bool) *AuthHandler {
	return &AuthHandler{authService: authService, log: log, production: production}
}

// RegisterRoutes mounts /register and /login publicly and /me and /logout behind requireAuth.
func (h *AuthHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Get("/me", h.me)
		authed.Post("/logout", h.logout)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	h.log.Info(r.Context(), "user registered", "user_id", resp.User.ID)
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, r, http.StatusUnauthorized, "Missing user context")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, r, http.StatusUnauthorized, "Missing user context")
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
