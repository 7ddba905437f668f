package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, logger: logger}
}

// Create registers a company. Unauthenticated callers must supply owner
// bootstrap credentials in the same request.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create company")
		return
	}

	w.Header().Set("Location", "/api/v1/companies/"+company.ID.String())
	respondJSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Update(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.companyService.ListMembers(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list members")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *CompanyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req domain.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.companyService.AddMember(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add member")
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

func (h *CompanyHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r, "userId")
	if err != nil {
		respondInvalidID(w, "user")
		return
	}

	var req domain.UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.companyService.UpdateMemberRole(r.Context(), memberID, req.Role); err != nil {
		respondServiceError(w, h.logger, err, "update member role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r, "userId")
	if err != nil {
		respondInvalidID(w, "user")
		return
	}

	if err := h.companyService.RemoveMember(r.Context(), memberID); err != nil {
		respondServiceError(w, h.logger, err, "remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
