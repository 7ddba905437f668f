package repository

import (
	"context"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create persists a quote and its line items in one transaction
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// ReplaceItems swaps a quote's line items for a new set
func (r *QuoteRepository) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_type = ? AND parent_id = ?", domain.LineItemParentQuote, quoteID).
			Delete(&domain.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Quote{}).Error
}

type QuoteFilter struct {
	Search     string
	Status     string
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
}

func (r *QuoteRepository) List(ctx context.Context, p Pagination, filter QuoteFilter) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	query = ApplyCompanyScope(ctx, query)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(quote_number) LIKE ?", pattern, pattern)
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

	err := query.Preload("Items").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, total, err
}

// UpdateStatus performs a guarded status transition. The update only matches
// when the quote is still in one of the expected statuses; zero rows means
// the transition raced or was invalid.
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.QuoteStatus, to domain.QuoteStatus) error {
	query := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
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
