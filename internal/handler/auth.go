package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/authcore/authcore/internal/apperr"
	"github.com/authcore/authcore/internal/service"
)

// AccessTokenHeader carries the bearer token on authenticate requests.
const AccessTokenHeader = "x-access-token"

// AuthHandler exposes the account and authentication endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// CredentialsRequest is the body for sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCheckRequest is the body for the admin check.
type AdminCheckRequest struct {
	ID string `json:"id"`
}

// SignUp handles POST /api/v1/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	profile, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user created", slog.String("user_id", profile.ID))
	writeSuccess(w, http.StatusCreated, "successfully created a new user", profile)
}

// SignIn handles POST /api/v1/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	tok, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "successfully signed in", tok)
}

// Authenticate handles GET /api/v1/is-authenticated.
// The token is supplied via the x-access-token header.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	tok := r.Header.Get(AccessTokenHeader)
	if tok == "" {
		writeError(w, apperr.InvalidToken("invalid token"))
		return
	}

	userID, err := h.svc.Authenticate(r.Context(), tok)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user is authenticated and token is valid", userID)
}

// IsAdmin handles GET /api/v1/is-admin.
func (h *AuthHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	var req AdminCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	isAdmin, err := h.svc.CheckIsAdmin(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "successfully fetched whether user is an admin or not", isAdmin)
}

// Destroy handles DELETE /api/v1/users/{id}.
func (h *AuthHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apperr.Validation("user id not given"))
		return
	}

	ok, err := h.svc.Destroy(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user deleted", slog.String("user_id", userID))
	writeSuccess(w, http.StatusOK, "successfully deleted the user", ok)
}
