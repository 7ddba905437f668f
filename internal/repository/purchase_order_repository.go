package repository

import (
	"context"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	query := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Material").
		Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) List(ctx context.Context, p Pagination, status string) ([]domain.PurchaseOrder, int64, error) {
	var pos []domain.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	query = ApplyCompanyScope(ctx, query)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Supplier").Preload("Items").
		Offset(p.Offset()).Limit(p.PageSize).
		Order("created_at DESC").
		Find(&pos).Error
	return pos, total, err
}

// UpdateStatus performs a guarded status transition
func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []domain.PurchaseOrderStatus, to domain.PurchaseOrderStatus) error {
	query := r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
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

// Receive marks the order received and increments stock for every item in
// one transaction. The guarded status update makes receiving idempotent in
// the rejecting sense: a second receive matches no row and changes nothing.
func (r *PurchaseOrderRepository) Receive(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&domain.PurchaseOrder{}).
			Where("id = ? AND company_id = ? AND status IN ?",
				po.ID, po.CompanyID,
				[]domain.PurchaseOrderStatus{domain.PurchaseOrderStatusDraft, domain.PurchaseOrderStatusOrdered}).
			Updates(map[string]interface{}{
				"status":      domain.PurchaseOrderStatusReceived,
				"received_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		for _, item := range po.Items {
			if err := IncrementStock(tx, item.MaterialID, item.Quantity); err != nil {
				return err
			}
		}

		po.Status = domain.PurchaseOrderStatusReceived
		po.ReceivedAt = &now
		return nil
	})
}
