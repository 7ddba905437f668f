package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice lifecycle and payment recording
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	notification *NotificationService
	logger       *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	notification *NotificationService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		notification: notification,
		logger:       logger,
	}
}

func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInvoiceWrite)
	if err != nil {
		return nil, err
	}
	if req.TaxAmount.IsNegative() || req.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax and discount cannot be negative", ErrInvalidInput)
	}

	items, subtotal, err := buildLineItems(domain.LineItemParentInvoice, req.Items)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		CompanyID:      user.CompanyID,
		CustomerID:     req.CustomerID,
		ProjectID:      req.ProjectID,
		Status:         domain.InvoiceStatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          computeTotal(subtotal, req.TaxAmount, req.DiscountAmount),
		DueDate:        req.DueDate,
		Items:          items,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

func (s *InvoiceService) getVisible(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if user.IsClient() {
		if user.CustomerID == nil || invoice.CustomerID == nil || *invoice.CustomerID != *user.CustomerID {
			return nil, ErrNotFound
		}
	}
	return invoice, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInvoiceRead)
	if err != nil {
		return nil, err
	}
	invoice, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// Update modifies a draft invoice. Sent, paid, and cancelled invoices are
// immutable apart from their status transitions.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInvoiceWrite); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be edited", ErrInvalidState)
	}

	if req.CustomerID != nil {
		invoice.CustomerID = req.CustomerID
	}
	if req.ProjectID != nil {
		invoice.ProjectID = req.ProjectID
	}
	if req.TaxAmount != nil {
		if req.TaxAmount.IsNegative() {
			return nil, fmt.Errorf("%w: tax cannot be negative", ErrInvalidInput)
		}
		invoice.TaxAmount = *req.TaxAmount
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			return nil, fmt.Errorf("%w: discount cannot be negative", ErrInvalidInput)
		}
		invoice.DiscountAmount = *req.DiscountAmount
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}

	if req.Items != nil {
		items, subtotal, err := buildLineItems(domain.LineItemParentInvoice, req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].ParentID = invoice.ID
		}
		if err := s.invoiceRepo.ReplaceItems(ctx, invoice.ID, items); err != nil {
			return nil, fmt.Errorf("failed to replace items: %w", err)
		}
		invoice.Subtotal = subtotal
		invoice.Items = items
	}
	invoice.Total = computeTotal(invoice.Subtotal, invoice.TaxAmount, invoice.DiscountAmount)

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

func (s *InvoiceService) List(ctx context.Context, p repository.Pagination, filter repository.InvoiceFilter) (*domain.ListResponse[domain.InvoiceDTO], error) {
	user, err := RequirePermission(ctx, domain.PermissionInvoiceRead)
	if err != nil {
		return nil, err
	}
	p.Normalize()

	if user.IsClient() {
		filter.CustomerID = user.CustomerID
		if filter.CustomerID == nil {
			return &domain.ListResponse[domain.InvoiceDTO]{
				Items: []domain.InvoiceDTO{}, Page: p.Page, PageSize: p.PageSize,
			}, nil
		}
	}

	invoices, total, err := s.invoiceRepo.List(ctx, p, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	resp := &domain.ListResponse[domain.InvoiceDTO]{
		Items:      make([]domain.InvoiceDTO, 0, len(invoices)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range invoices {
		resp.Items = append(resp.Items, mapper.ToInvoiceDTO(&invoices[i]))
	}
	return resp, nil
}

// Send transitions a draft invoice to sent
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInvoiceWrite); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	err = s.invoiceRepo.UpdateStatus(ctx, id, []domain.InvoiceStatus{domain.InvoiceStatusDraft}, domain.InvoiceStatusSent)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, invoice.Status)
		}
		return nil, fmt.Errorf("failed to send invoice: %w", err)
	}

	invoice.Status = domain.InvoiceStatusSent
	if invoice.DueDate == nil {
		dueDate := time.Now().UTC().AddDate(0, 0, invoiceDueDays)
		invoice.DueDate = &dueDate
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to stamp due date: %w", err)
		}
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// Cancel voids a draft or sent invoice. Paid invoices cannot be cancelled.
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionInvoiceWrite); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	err = s.invoiceRepo.UpdateStatus(ctx, id,
		[]domain.InvoiceStatus{domain.InvoiceStatusDraft, domain.InvoiceStatusSent},
		domain.InvoiceStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, invoice.Status)
		}
		return nil, fmt.Errorf("failed to cancel invoice: %w", err)
	}

	invoice.Status = domain.InvoiceStatusCancelled
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// RecordPayment applies a payment to a sent invoice. Payments beyond the
// outstanding balance are rejected; reaching the total flips the invoice to
// paid and stamps PaidDate exactly once.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req *domain.RecordPaymentRequest) (*domain.InvoiceDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionPaymentWrite)
	if err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: invalid payment method %q", ErrInvalidInput, req.Method)
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if invoice.Status != domain.InvoiceStatusSent {
		return nil, fmt.Errorf("%w: payments require a sent invoice, is %s", ErrInvalidState, invoice.Status)
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := &domain.Payment{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    paidAt,
	}

	updated, err := s.invoiceRepo.RecordPayment(ctx, user.CompanyID, invoiceID, payment)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentExceedsBalance) {
			return nil, fmt.Errorf("%w: payment exceeds outstanding balance", ErrInvalidInput)
		}
		return nil, translateNotFound(err)
	}

	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(updated.Status)),
	)

	if updated.Status == domain.InvoiceStatusPaid && s.notification != nil {
		s.notification.NotifyInvoicePaid(ctx, updated)
	}

	// Reload with items and payments for the response
	full, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	dto := mapper.ToInvoiceDTO(full)
	return &dto, nil
}
