package repository

import (
	"context"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Material{}).Error
}

func (r *MaterialRepository) List(ctx context.Context, p Pagination, search string) ([]domain.Material, int64, error) {
	var materials []domain.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Material{})
	query = ApplyCompanyScope(ctx, query)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("name ASC").Find(&materials).Error
	return materials, total, err
}

// ListLowStock returns materials at or below their minimum stock level
func (r *MaterialRepository) ListLowStock(ctx context.Context, companyID uuid.UUID) ([]domain.Material, error) {
	var materials []domain.Material
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND min_stock_level IS NOT NULL AND stock_quantity <= min_stock_level", companyID).
		Order("name ASC").
		Find(&materials).Error
	return materials, err
}

// RecordUsage decrements stock and writes the usage row in one transaction.
// The decrement is conditional on sufficient stock; when it matches no row
// the transaction rolls back and stock is unchanged.
func (r *MaterialRepository) RecordUsage(ctx context.Context, usage *domain.MaterialUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Material{}).
			Where("id = ? AND stock_quantity >= ?", usage.MaterialID, usage.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", usage.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return tx.Create(usage).Error
	})
}

// IncrementStock adds quantity to a material's stock inside a transaction
func IncrementStock(tx *gorm.DB, materialID uuid.UUID, quantity decimal.Decimal) error {
	return tx.Model(&domain.Material{}).
		Where("id = ?", materialID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}

// ListUsage returns usage rows for a company, optionally narrowed to one
// project, newest first.
func (r *MaterialRepository) ListUsage(ctx context.Context, p Pagination, projectID *uuid.UUID) ([]domain.MaterialUsage, int64, error) {
	var usages []domain.MaterialUsage
	var total int64

	query := r.db.WithContext(ctx).
		Model(&domain.MaterialUsage{}).
		Joins("JOIN materials ON materials.id = material_usages.material_id")
	query = ApplyCompanyScopeWithAlias(ctx, query, "materials")

	if projectID != nil {
		query = query.Where("material_usages.project_id = ?", *projectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Material").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("material_usages.used_at DESC").
		Find(&usages).Error
	return usages, total, err
}

// ListUsageForCompany returns all usage rows for a company. Used by the
// analytics rollups.
func (r *MaterialRepository) ListUsageForCompany(ctx context.Context, companyID uuid.UUID) ([]domain.MaterialUsage, error) {
	var usages []domain.MaterialUsage
	err := r.db.WithContext(ctx).
		Preload("Material").
		Joins("JOIN materials ON materials.id = material_usages.material_id").
		Where("materials.company_id = ?", companyID).
		Find(&usages).Error
	return usages, err
}
