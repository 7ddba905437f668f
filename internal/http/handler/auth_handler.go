package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login exchanges credentials for a signed session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "log in")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// SwitchCompany reissues the session against another membership
func (h *AuthHandler) SwitchCompany(w http.ResponseWriter, r *http.Request) {
	var req domain.SwitchCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.SwitchCompany(r.Context(), req.CompanyID)
	if err != nil {
		respondServiceError(w, h.logger, err, "switch company")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Me returns the caller's profile, active company and permissions
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
