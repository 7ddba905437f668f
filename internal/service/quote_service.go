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

const (
	// invoiceDueDays is the payment term applied to converted invoices
	invoiceDueDays = 30
	// quoteValidityDays is the default validity window stamped on send
	quoteValidityDays = 60
)

// QuoteService handles quote lifecycle and conversion into invoices
type QuoteService struct {
	quoteRepo   *repository.QuoteRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// buildLineItems validates inputs and computes per-line and subtotal sums
func buildLineItems(parentType domain.LineItemParent, inputs []domain.LineItemInput) ([]domain.LineItem, decimal.Decimal, error) {
	items := make([]domain.LineItem, 0, len(inputs))
	subtotal := decimal.Zero
	for i, in := range inputs {
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: line %d unit price cannot be negative", ErrInvalidInput, i+1)
		}
		itemType := in.Type
		if itemType == "" {
			itemType = domain.LineItemTypeOther
		}
		if !itemType.IsValid() {
			return nil, decimal.Zero, fmt.Errorf("%w: line %d has invalid type %q", ErrInvalidInput, i+1, in.Type)
		}
		total := in.Quantity.Mul(in.UnitPrice)
		items = append(items, domain.LineItem{
			ParentType:  parentType,
			Description: in.Description,
			Type:        itemType,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Total:       total,
			SortOrder:   in.SortOrder,
		})
		subtotal = subtotal.Add(total)
	}
	return items, subtotal, nil
}

func computeTotal(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(discount)
}

func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionQuoteWrite)
	if err != nil {
		return nil, err
	}
	if req.TaxAmount.IsNegative() || req.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax and discount cannot be negative", ErrInvalidInput)
	}

	items, subtotal, err := buildLineItems(domain.LineItemParentQuote, req.Items)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		CompanyID:      user.CompanyID,
		CustomerID:     req.CustomerID,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Status:         domain.QuoteStatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          computeTotal(subtotal, req.TaxAmount, req.DiscountAmount),
		ValidUntil:     req.ValidUntil,
		Items:          items,
	}
	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) getVisible(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if user.IsClient() {
		if user.CustomerID == nil || quote.CustomerID == nil || *quote.CustomerID != *user.CustomerID {
			return nil, ErrNotFound
		}
	}
	return quote, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionQuoteRead)
	if err != nil {
		return nil, err
	}
	quote, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Update modifies a draft quote. Sent or settled quotes are immutable.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionQuoteWrite); err != nil {
		return nil, err
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", ErrInvalidState)
	}

	if req.Title != nil {
		quote.Title = *req.Title
	}
	if req.CustomerID != nil {
		quote.CustomerID = req.CustomerID
	}
	if req.ProjectID != nil {
		quote.ProjectID = req.ProjectID
	}
	if req.TaxAmount != nil {
		if req.TaxAmount.IsNegative() {
			return nil, fmt.Errorf("%w: tax cannot be negative", ErrInvalidInput)
		}
		quote.TaxAmount = *req.TaxAmount
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			return nil, fmt.Errorf("%w: discount cannot be negative", ErrInvalidInput)
		}
		quote.DiscountAmount = *req.DiscountAmount
	}
	if req.ValidUntil != nil {
		quote.ValidUntil = req.ValidUntil
	}

	if req.Items != nil {
		items, subtotal, err := buildLineItems(domain.LineItemParentQuote, req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].ParentID = quote.ID
		}
		if err := s.quoteRepo.ReplaceItems(ctx, quote.ID, items); err != nil {
			return nil, fmt.Errorf("failed to replace items: %w", err)
		}
		quote.Subtotal = subtotal
		quote.Items = items
	}
	quote.Total = computeTotal(quote.Subtotal, quote.TaxAmount, quote.DiscountAmount)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := RequirePermission(ctx, domain.PermissionQuoteWrite); err != nil {
		return err
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err)
	}
	if quote.Status != domain.QuoteStatusDraft {
		return fmt.Errorf("%w: only draft quotes can be deleted", ErrInvalidState)
	}
	return s.quoteRepo.Delete(ctx, id)
}

func (s *QuoteService) List(ctx context.Context, p repository.Pagination, filter repository.QuoteFilter) (*domain.ListResponse[domain.QuoteDTO], error) {
	user, err := RequirePermission(ctx, domain.PermissionQuoteRead)
	if err != nil {
		return nil, err
	}
	p.Normalize()

	if user.IsClient() {
		filter.CustomerID = user.CustomerID
		if filter.CustomerID == nil {
			return &domain.ListResponse[domain.QuoteDTO]{
				Items: []domain.QuoteDTO{}, Page: p.Page, PageSize: p.PageSize,
			}, nil
		}
	}

	quotes, total, err := s.quoteRepo.List(ctx, p, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	resp := &domain.ListResponse[domain.QuoteDTO]{
		Items:      make([]domain.QuoteDTO, 0, len(quotes)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range quotes {
		resp.Items = append(resp.Items, mapper.ToQuoteDTO(&quotes[i]))
	}
	return resp, nil
}

// Send transitions a draft quote to sent and stamps a default validity
// window when none was set.
func (s *QuoteService) Send(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionQuoteWrite); err != nil {
		return nil, err
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	err = s.quoteRepo.UpdateStatus(ctx, id, []domain.QuoteStatus{domain.QuoteStatusDraft}, domain.QuoteStatusSent)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: quote is %s", ErrInvalidState, quote.Status)
		}
		return nil, fmt.Errorf("failed to send quote: %w", err)
	}

	quote.Status = domain.QuoteStatusSent
	if quote.ValidUntil == nil {
		validUntil := time.Now().UTC().AddDate(0, 0, quoteValidityDays)
		quote.ValidUntil = &validUntil
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			return nil, fmt.Errorf("failed to stamp validity: %w", err)
		}
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Approve transitions a sent quote to approved. Client sessions may approve
// their own quotes through the portal.
func (s *QuoteService) Approve(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionQuoteRead)
	if err != nil {
		return nil, err
	}
	quote, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !user.IsClient() {
		if _, err := RequirePermission(ctx, domain.PermissionQuoteWrite); err != nil {
			return nil, err
		}
	}

	err = s.quoteRepo.UpdateStatus(ctx, id, []domain.QuoteStatus{domain.QuoteStatusSent}, domain.QuoteStatusApproved)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: quote is %s", ErrInvalidState, quote.Status)
		}
		return nil, fmt.Errorf("failed to approve quote: %w", err)
	}

	quote.Status = domain.QuoteStatusApproved
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Reject transitions a sent quote to rejected
func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionQuoteRead)
	if err != nil {
		return nil, err
	}
	quote, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !user.IsClient() {
		if _, err := RequirePermission(ctx, domain.PermissionQuoteWrite); err != nil {
			return nil, err
		}
	}

	err = s.quoteRepo.UpdateStatus(ctx, id, []domain.QuoteStatus{domain.QuoteStatusSent}, domain.QuoteStatusRejected)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: quote is %s", ErrInvalidState, quote.Status)
		}
		return nil, fmt.Errorf("failed to reject quote: %w", err)
	}

	quote.Status = domain.QuoteStatusRejected
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ConvertToInvoice creates an invoice from an approved quote. Money fields
// and line items are copied by value; the quote converts at most once. The
// new invoice starts sent with a 30-day payment term.
func (s *QuoteService) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionInvoiceWrite)
	if err != nil {
		return nil, err
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if quote.Status != domain.QuoteStatusApproved {
		return nil, fmt.Errorf("%w: quote must be approved, is %s", ErrInvalidState, quote.Status)
	}
	if quote.ConvertedInvoiceID != nil {
		return nil, fmt.Errorf("%w: quote already converted", ErrInvalidState)
	}

	dueDate := time.Now().UTC().AddDate(0, 0, invoiceDueDays)
	invoice := &domain.Invoice{
		CompanyID:      user.CompanyID,
		CustomerID:     quote.CustomerID,
		ProjectID:      quote.ProjectID,
		QuoteID:        &quote.ID,
		Status:         domain.InvoiceStatusSent,
		Subtotal:       quote.Subtotal,
		TaxAmount:      quote.TaxAmount,
		DiscountAmount: quote.DiscountAmount,
		Total:          quote.Total,
		DueDate:        &dueDate,
	}
	for _, item := range quote.Items {
		invoice.Items = append(invoice.Items, domain.LineItem{
			ParentType:  domain.LineItemParentInvoice,
			Description: item.Description,
			Type:        item.Type,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			SortOrder:   item.SortOrder,
		})
	}

	if err := s.invoiceRepo.CreateFromQuote(ctx, quote.ID, invoice); err != nil {
		if errors.Is(err, repository.ErrAlreadyConverted) {
			return nil, fmt.Errorf("%w: quote already converted", ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to convert quote: %w", err)
	}

	s.logger.Info("quote converted to invoice",
		zap.String("quote_id", quote.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}
