package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	customerID, err := parseOptionalUUID(r, "customerId")
	if err != nil {
		respondInvalidID(w, "customer")
		return
	}
	projectID, err := parseOptionalUUID(r, "projectId")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	filter := repository.InvoiceFilter{
		Search:     r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		CustomerID: customerID,
		ProjectID:  projectID,
	}

	result, err := h.invoiceService.List(r.Context(), p, filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list invoices")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "invoice")
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get invoice")
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create invoice")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "invoice")
		return
	}

	var req domain.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update invoice")
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// Send issues a draft invoice and stamps its due date
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "send invoice", h.invoiceService.Send)
}

// Cancel voids a draft or sent invoice
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel invoice", h.invoiceService.Cancel)
}

// RecordPayment registers a payment against a sent invoice
func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "invoice")
		return
	}

	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.RecordPayment(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "record payment")
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, uuid.UUID) (*domain.InvoiceDTO, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "invoice")
		return
	}

	invoice, err := fn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, action)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}
