package repository

import (
	"context"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsRepository fetches the raw rows the analytics rollups are
// computed from. Aggregation happens in the service over decimal sums.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// ListInvoicesWithPayments returns all invoices of a company with payments
func (r *AnalyticsRepository) ListInvoicesWithPayments(ctx context.Context, companyID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("company_id = ?", companyID).
		Find(&invoices).Error
	return invoices, err
}

// ListLaborLineItems returns the labor line items on a company's invoices
func (r *AnalyticsRepository) ListLaborLineItems(ctx context.Context, companyID uuid.UUID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	invoiceIDs := r.db.Model(&domain.Invoice{}).Select("id").Where("company_id = ?", companyID)
	err := r.db.WithContext(ctx).
		Where("parent_type = ? AND type = ? AND parent_id IN (?)",
			domain.LineItemParentInvoice, domain.LineItemTypeLabor, invoiceIDs).
		Find(&items).Error
	return items, err
}

// ListProjects returns all projects of a company
func (r *AnalyticsRepository) ListProjects(ctx context.Context, companyID uuid.UUID) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&projects).Error
	return projects, err
}

// ListWorkOrders returns all work orders of a company
func (r *AnalyticsRepository) ListWorkOrders(ctx context.Context, companyID uuid.UUID) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&orders).Error
	return orders, err
}

// ListCompanyIDs returns every company ID. Used by the background scans.
func (r *AnalyticsRepository) ListCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Pluck("id", &ids).Error
	return ids, err
}

// TotalRevenue sums all payments across every tenant
func (r *AnalyticsRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var payments []domain.Payment
	if err := r.db.WithContext(ctx).Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}
