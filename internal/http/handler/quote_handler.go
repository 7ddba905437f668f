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

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, logger: logger}
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
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
	filter := repository.QuoteFilter{
		Search:     r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		CustomerID: customerID,
		ProjectID:  projectID,
	}

	result, err := h.quoteService.List(r.Context(), p, filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list quotes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "quote")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "quote")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "quote")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send moves a draft quote to sent
func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "send quote", h.quoteService.Send)
}

// Approve accepts a sent quote
func (h *QuoteHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve quote", h.quoteService.Approve)
}

// Reject declines a sent quote
func (h *QuoteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject quote", h.quoteService.Reject)
}

// ConvertToInvoice turns an approved quote into a numbered invoice
func (h *QuoteHandler) ConvertToInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "quote")
		return
	}

	invoice, err := h.quoteService.ConvertToInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "convert quote")
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

func (h *QuoteHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, uuid.UUID) (*domain.QuoteDTO, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "quote")
		return
	}

	quote, err := fn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, action)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}
