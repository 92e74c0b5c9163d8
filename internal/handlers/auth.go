package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quickdate/admin-api/internal/middleware"
	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/services"
)

type AuthHandler struct {
	admins     *services.MongoAdminService
	sessions   *services.SessionService
	production bool
}

func NewAuthHandler(admins *services.MongoAdminService, sessions *services.SessionService, production bool) *AuthHandler {
	return &AuthHandler{admins: admins, sessions: sessions, production: production}
}

// Login handles POST /api/auth/session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("email and password are required"))
		return
	}

	account, err := h.admins.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountDisabled) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("invalid email or password"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("login failed"))
		return
	}

	token, err := h.sessions.Issue(account.Email, account.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("failed to create session"))
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.sessions.MaxAge()))
	writeJSON(w, http.StatusOK, models.SessionResponse{
		Ok:            true,
		Authenticated: true,
		Email:         account.Email,
		Token:         token,
	})
}

// Session handles GET /api/auth/session: a cheap authenticated-or-not probe.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetAdminEmail(r.Context())
	writeJSON(w, http.StatusOK, models.SessionResponse{
		Ok:            true,
		Authenticated: email != "",
		Email:         email,
	})
}

// Logout handles DELETE /api/auth/session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -time.Hour))
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

// Seed handles POST /api/admin-users/seed: bootstrap an operator account in
// dev environments. Refused outright in production.
func (h *AuthHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.production {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("seeding is disabled in production"))
		return
	}
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("email and password are required"))
		return
	}
	if err := h.admins.EnsureSeed(r.Context(), req.Email, req.Name, req.Password); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, models.OKResponse{Ok: true})
}

func (h *AuthHandler) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
}
