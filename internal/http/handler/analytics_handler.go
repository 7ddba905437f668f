package handler

import (
	"net/http"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

func (h *AnalyticsHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.InvoiceAnalytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "compute invoice analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) Materials(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.MaterialAnalytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "compute material analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.ProjectAnalytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "compute project analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Revenue accepts optional from and to query parameters in RFC 3339 or
// YYYY-MM-DD form.
func (h *AnalyticsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid 'from' date",
		})
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid 'to' date",
		})
		return
	}

	result, err := h.analyticsService.RevenueAnalytics(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, h.logger, err, "compute revenue analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.AdminStats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "compute admin stats")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
