package repository

import (
	"context"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	if err := query.First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyCompanyScope(ctx, query)
	return query.Delete(&domain.Attachment{}).Error
}

func (r *AttachmentRepository) List(ctx context.Context, p Pagination, projectID, invoiceID *uuid.UUID) ([]domain.Attachment, int64, error) {
	var attachments []domain.Attachment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Attachment{})
	query = ApplyCompanyScope(ctx, query)

	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if invoiceID != nil {
		query = query.Where("invoice_id = ?", *invoiceID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("created_at DESC").Find(&attachments).Error
	return attachments, total, err
}
