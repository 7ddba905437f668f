package repository

import (
	"context"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, p Pagination, unreadOnly bool) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	query = ApplyCompanyScope(ctx, query)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("created_at DESC").Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false)
	query = ApplyCompanyScope(ctx, query)
	err := query.Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	query := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID)
	query = ApplyCompanyScope(ctx, query)
	return query.Updates(map[string]interface{}{
		"read":    true,
		"read_at": time.Now().UTC(),
	}).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false)
	query = ApplyCompanyScope(ctx, query)
	return query.Updates(map[string]interface{}{
		"read":    true,
		"read_at": time.Now().UTC(),
	}).Error
}

// ExistsRecent reports whether an equivalent notification was already
// created inside the window. Keeps the periodic scans from re-alerting.
func (r *NotificationRepository) ExistsRecent(ctx context.Context, companyID, userID uuid.UUID, kind domain.NotificationType, title string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("company_id = ? AND user_id = ? AND type = ? AND title = ? AND created_at > ?",
			companyID, userID, kind, title, since).
		Count(&count).Error
	return count > 0, err
}
