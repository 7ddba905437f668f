package service

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notificationDedupeWindow keeps the periodic scans from re-alerting the
// same condition on every run.
const notificationDedupeWindow = 24 * time.Hour

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	companyRepo      *repository.CompanyRepository
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		companyRepo:      companyRepo,
		logger:           logger,
	}
}

func (s *NotificationService) List(ctx context.Context, p repository.Pagination, unreadOnly bool) (*domain.ListResponse[domain.NotificationDTO], error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	p.Normalize()

	notifications, total, err := s.notificationRepo.ListForUser(ctx, user.UserID, p, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	resp := &domain.ListResponse[domain.NotificationDTO]{
		Items:      make([]domain.NotificationDTO, 0, len(notifications)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range notifications {
		resp.Items = append(resp.Items, mapper.ToNotificationDTO(&notifications[i]))
	}
	return resp, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}
	return s.notificationRepo.UnreadCount(ctx, user.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	return s.notificationRepo.MarkRead(ctx, user.UserID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	return s.notificationRepo.MarkAllRead(ctx, user.UserID)
}

// notifyRoles fans one notification out to all company members holding any
// of the given roles, skipping users already alerted inside the window.
func (s *NotificationService) notifyRoles(ctx context.Context, companyID uuid.UUID, roles []domain.MembershipRole, kind domain.NotificationType, title, message string) {
	userIDs, err := s.companyRepo.ListUserIDsByRoles(ctx, companyID, roles)
	if err != nil {
		s.logger.Error("failed to resolve notification targets", zap.Error(err))
		return
	}

	since := time.Now().UTC().Add(-notificationDedupeWindow)
	var batch []domain.Notification
	for _, userID := range userIDs {
		exists, err := s.notificationRepo.ExistsRecent(ctx, companyID, userID, kind, title, since)
		if err != nil {
			s.logger.Error("failed to check notification dedupe", zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		batch = append(batch, domain.Notification{
			CompanyID: companyID,
			UserID:    userID,
			Type:      kind,
			Title:     title,
			Message:   message,
		})
	}
	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		s.logger.Error("failed to create notifications", zap.Error(err))
	}
}

// NotifyLowStock alerts owners, admins and managers about a depleted material
func (s *NotificationService) NotifyLowStock(ctx context.Context, material *domain.Material) {
	title := fmt.Sprintf("Low stock: %s", material.Name)
	message := fmt.Sprintf("Stock of %s is down to %s %s", material.Name, material.StockQuantity.String(), material.Unit)
	s.notifyRoles(ctx, material.CompanyID,
		[]domain.MembershipRole{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager},
		domain.NotificationTypeLowStock, title, message)
}

// NotifyInvoiceOverdue alerts owners, admins and managers about an overdue invoice
func (s *NotificationService) NotifyInvoiceOverdue(ctx context.Context, invoice *domain.Invoice) {
	title := fmt.Sprintf("Invoice %s overdue", invoice.InvoiceNumber)
	message := fmt.Sprintf("Invoice %s for %s passed its due date", invoice.InvoiceNumber, invoice.Total.String())
	s.notifyRoles(ctx, invoice.CompanyID,
		[]domain.MembershipRole{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager},
		domain.NotificationTypeInvoiceOverdue, title, message)
}

// NotifyInvoicePaid alerts owners and admins that an invoice settled in full
func (s *NotificationService) NotifyInvoicePaid(ctx context.Context, invoice *domain.Invoice) {
	title := fmt.Sprintf("Invoice %s paid", invoice.InvoiceNumber)
	message := fmt.Sprintf("Invoice %s was paid in full (%s)", invoice.InvoiceNumber, invoice.Total.String())
	s.notifyRoles(ctx, invoice.CompanyID,
		[]domain.MembershipRole{domain.RoleOwner, domain.RoleAdmin},
		domain.NotificationTypeInvoicePaid, title, message)
}
