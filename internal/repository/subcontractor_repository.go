package repository

import (
	"context"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubcontractorRepository struct {
	db *gorm.DB
}

func NewSubcontractorRepository(db *gorm.DB) *SubcontractorRepository {
	return &SubcontractorRepository{db: db}
}

func (r *SubcontractorRepository) Create(ctx context.Context, sub *domain.Subcontractor) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubcontractorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subcontractor, error) {
	var sub domain.Subcontractor
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubcontractorRepository) Update(ctx context.Context, sub *domain.Subcontractor) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *SubcontractorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Subcontractor{}).Error
}

func (r *SubcontractorRepository) List(ctx context.Context, p Pagination, search string) ([]domain.Subcontractor, int64, error) {
	var subs []domain.Subcontractor
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Subcontractor{})
	query = ApplyCompanyScope(ctx, query)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(trade) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("name ASC").Find(&subs).Error
	return subs, total, err
}

// --- Work orders ---

func (r *SubcontractorRepository) CreateWorkOrder(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

func (r *SubcontractorRepository) GetWorkOrder(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	query := r.db.WithContext(ctx).Preload("Subcontractor").Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&wo).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *SubcontractorRepository) UpdateWorkOrder(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Save(wo).Error
}

func (r *SubcontractorRepository) ListWorkOrders(ctx context.Context, p Pagination, status string, projectID *uuid.UUID) ([]domain.WorkOrder, int64, error) {
	var orders []domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{})
	query = ApplyCompanyScope(ctx, query)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Subcontractor").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, total, err
}
