package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct {
	db        *gorm.DB
	sequences *NumberSequenceRepository
}

func NewInvoiceRepository(db *gorm.DB, sequences *NumberSequenceRepository) *InvoiceRepository {
	return &InvoiceRepository{db: db, sequences: sequences}
}

// Create persists an invoice and its line items, issuing the invoice number
// from the company's sequence inside the same transaction.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := r.sequences.NextInTx(tx, invoice.CompanyID, domain.SequenceKindInvoice)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%06d", n)
		return tx.Create(invoice).Error
	})
}

// CreateFromQuote creates the invoice and stamps the source quote's
// conversion marker in one transaction. The guard on converted_invoice_id
// makes conversion happen at most once even under concurrent requests.
func (r *InvoiceRepository) CreateFromQuote(ctx context.Context, quoteID uuid.UUID, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := r.sequences.NextInTx(tx, invoice.CompanyID, domain.SequenceKindInvoice)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%06d", n)

		if err := tx.Create(invoice).Error; err != nil {
			return err
		}

		result := tx.Model(&domain.Quote{}).
			Where("id = ? AND company_id = ? AND converted_invoice_id IS NULL", quoteID, invoice.CompanyID).
			Update("converted_invoice_id", invoice.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyConverted
		}
		return nil
	})
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// ReplaceItems swaps an invoice's line items for a new set
func (r *InvoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []domain.LineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_type = ? AND parent_id = ?", domain.LineItemParentInvoice, invoiceID).
			Delete(&domain.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

type InvoiceFilter struct {
	Search     string
	Status     string
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
}

func (r *InvoiceRepository) List(ctx context.Context, p Pagination, filter InvoiceFilter) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	query = ApplyCompanyScope(ctx, query)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ?", pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = ApplyCustomerScope(query, filter.CustomerID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Payments").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, total, err
}

// UpdateStatus performs a guarded status transition
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.InvoiceStatus, to domain.InvoiceStatus) error {
	query := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status IN ?", id, from)
	query = ApplyCompanyScope(ctx, query)
	result := query.Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// RecordPayment applies a payment to an invoice under a row lock. The
// payment must not exceed the outstanding balance; when cumulative payments
// reach the total the invoice flips to paid and PaidDate is stamped once.
func (r *InvoiceRepository) RecordPayment(ctx context.Context, companyID, invoiceID uuid.UUID, payment *domain.Payment) (*domain.Invoice, error) {
	var invoice domain.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND company_id = ?", invoiceID, companyID).
			First(&invoice).Error; err != nil {
			return err
		}

		var payments []domain.Payment
		if err := tx.Where("invoice_id = ?", invoiceID).Find(&payments).Error; err != nil {
			return err
		}
		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}

		balance := invoice.Total.Sub(paid)
		if payment.Amount.GreaterThan(balance) {
			return ErrPaymentExceedsBalance
		}

		payment.InvoiceID = invoiceID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		paid = paid.Add(payment.Amount)
		if paid.GreaterThanOrEqual(invoice.Total) && invoice.Status != domain.InvoiceStatusPaid {
			now := time.Now().UTC()
			if err := tx.Model(&invoice).Updates(map[string]interface{}{
				"status":    domain.InvoiceStatusPaid,
				"paid_date": now,
			}).Error; err != nil {
				return err
			}
			invoice.Status = domain.InvoiceStatusPaid
			invoice.PaidDate = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// SumPayments returns the cumulative amount paid on an invoice
func (r *InvoiceRepository) SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var payments []domain.Payment
	if err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// ListOverdue returns sent invoices whose due date has passed, across the
// given company. Used by the overdue scan job.
func (r *InvoiceRepository) ListOverdue(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
			companyID, domain.InvoiceStatusSent, asOf).
		Find(&invoices).Error
	return invoices, err
}
