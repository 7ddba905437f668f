package repository

import (
	"context"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) Create(ctx context.Context, equipment *domain.Equipment) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	var equipment domain.Equipment
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&equipment).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, equipment *domain.Equipment) error {
	return r.db.WithContext(ctx).Save(equipment).Error
}

func (r *EquipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Equipment{}).Error
}

func (r *EquipmentRepository) List(ctx context.Context, p Pagination, search, status string) ([]domain.Equipment, int64, error) {
	var equipment []domain.Equipment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Equipment{})
	query = ApplyCompanyScope(ctx, query)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ?", pattern, pattern)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("name ASC").Find(&equipment).Error
	return equipment, total, err
}
