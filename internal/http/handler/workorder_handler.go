package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type WorkOrderHandler struct {
	workOrderService *service.WorkOrderService
	logger           *zap.Logger
}

func NewWorkOrderHandler(workOrderService *service.WorkOrderService, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderService: workOrderService, logger: logger}
}

// --- Equipment ---

func (h *WorkOrderHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := h.workOrderService.ListEquipment(r.Context(), p, r.URL.Query().Get("search"), r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list equipment")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *WorkOrderHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "equipment")
		return
	}

	equipment, err := h.workOrderService.GetEquipment(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get equipment")
		return
	}
	respondJSON(w, http.StatusOK, equipment)
}

func (h *WorkOrderHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	equipment, err := h.workOrderService.CreateEquipment(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create equipment")
		return
	}
	respondJSON(w, http.StatusCreated, equipment)
}

func (h *WorkOrderHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "equipment")
		return
	}

	var req domain.UpdateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	equipment, err := h.workOrderService.UpdateEquipment(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update equipment")
		return
	}
	respondJSON(w, http.StatusOK, equipment)
}

func (h *WorkOrderHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "equipment")
		return
	}

	if err := h.workOrderService.DeleteEquipment(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Subcontractors ---

func (h *WorkOrderHandler) ListSubcontractors(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := h.workOrderService.ListSubcontractors(r.Context(), p, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list subcontractors")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *WorkOrderHandler) GetSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "subcontractor")
		return
	}

	sub, err := h.workOrderService.GetSubcontractor(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get subcontractor")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (h *WorkOrderHandler) CreateSubcontractor(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubcontractorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sub, err := h.workOrderService.CreateSubcontractor(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create subcontractor")
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (h *WorkOrderHandler) DeleteSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "subcontractor")
		return
	}

	if err := h.workOrderService.DeleteSubcontractor(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete subcontractor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Work orders ---

func (h *WorkOrderHandler) ListWorkOrders(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	projectID, err := parseOptionalUUID(r, "projectId")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	result, err := h.workOrderService.ListWorkOrders(r.Context(), p, r.URL.Query().Get("status"), projectID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list work orders")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *WorkOrderHandler) GetWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "work order")
		return
	}

	wo, err := h.workOrderService.GetWorkOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get work order")
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

func (h *WorkOrderHandler) CreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	wo, err := h.workOrderService.CreateWorkOrder(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create work order")
		return
	}
	respondJSON(w, http.StatusCreated, wo)
}

func (h *WorkOrderHandler) UpdateWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "work order")
		return
	}

	var req domain.UpdateWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	wo, err := h.workOrderService.UpdateWorkOrder(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update work order")
		return
	}
	respondJSON(w, http.StatusOK, wo)
}
