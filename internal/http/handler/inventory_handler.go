package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, logger: logger}
}

// --- Materials ---

func (h *InventoryHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := h.inventoryService.ListMaterials(r.Context(), p, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list materials")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListLowStock returns materials at or below their minimum stock level
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := h.inventoryService.ListLowStock(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list low stock")
		return
	}
	respondJSON(w, http.StatusOK, materials)
}

func (h *InventoryHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "material")
		return
	}

	material, err := h.inventoryService.GetMaterial(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get material")
		return
	}
	respondJSON(w, http.StatusOK, material)
}

func (h *InventoryHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.inventoryService.CreateMaterial(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create material")
		return
	}
	respondJSON(w, http.StatusCreated, material)
}

func (h *InventoryHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "material")
		return
	}

	var req domain.UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.inventoryService.UpdateMaterial(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update material")
		return
	}
	respondJSON(w, http.StatusOK, material)
}

func (h *InventoryHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "material")
		return
	}

	if err := h.inventoryService.DeleteMaterial(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Usage ---

// RecordUsage consumes stock against a project
func (h *InventoryHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	usage, err := h.inventoryService.RecordUsage(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "record usage")
		return
	}
	respondJSON(w, http.StatusCreated, usage)
}

func (h *InventoryHandler) ListUsage(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	projectID, err := parseOptionalUUID(r, "projectId")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	result, err := h.inventoryService.ListUsage(r.Context(), p, projectID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list usage")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// --- Suppliers ---

func (h *InventoryHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := h.inventoryService.ListSuppliers(r.Context(), p, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list suppliers")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *InventoryHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "supplier")
		return
	}

	supplier, err := h.inventoryService.GetSupplier(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get supplier")
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *InventoryHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	supplier, err := h.inventoryService.CreateSupplier(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create supplier")
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *InventoryHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "supplier")
		return
	}

	if err := h.inventoryService.DeleteSupplier(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Purchase orders ---

func (h *InventoryHandler) ListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := h.inventoryService.ListPurchaseOrders(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list purchase orders")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *InventoryHandler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "purchase order")
		return
	}

	po, err := h.inventoryService.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get purchase order")
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (h *InventoryHandler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	po, err := h.inventoryService.CreatePurchaseOrder(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create purchase order")
		return
	}
	respondJSON(w, http.StatusCreated, po)
}

// MarkOrdered moves a draft purchase order to ordered
func (h *InventoryHandler) MarkOrdered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark purchase order ordered", h.inventoryService.MarkOrdered)
}

// Receive books the ordered quantities into stock
func (h *InventoryHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "receive purchase order", h.inventoryService.ReceivePurchaseOrder)
}

// Cancel voids a purchase order that has not been received
func (h *InventoryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel purchase order", h.inventoryService.CancelPurchaseOrder)
}

func (h *InventoryHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, uuid.UUID) (*domain.PurchaseOrderDTO, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "purchase order")
		return
	}

	po, err := fn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, action)
		return
	}
	respondJSON(w, http.StatusOK, po)
}
