package jobs

import (
	"context"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const scanTimeout = 5 * time.Minute

// AlertJobs runs the periodic tenant scans that raise notifications:
// materials at or below their minimum stock level and invoices past due.
type AlertJobs struct {
	analyticsRepo       *repository.AnalyticsRepository
	materialRepo        *repository.MaterialRepository
	invoiceRepo         *repository.InvoiceRepository
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewAlertJobs(
	analyticsRepo *repository.AnalyticsRepository,
	materialRepo *repository.MaterialRepository,
	invoiceRepo *repository.InvoiceRepository,
	notificationService *service.NotificationService,
	logger *zap.Logger,
) *AlertJobs {
	return &AlertJobs{
		analyticsRepo:       analyticsRepo,
		materialRepo:        materialRepo,
		invoiceRepo:         invoiceRepo,
		notificationService: notificationService,
		logger:              logger,
	}
}

// systemContext builds a background context scoped to one tenant.
// Scheduled scans carry no user session, so the repositories see a
// system identity with the company pinned.
func systemContext(ctx context.Context, companyID uuid.UUID) context.Context {
	return auth.WithUserContext(ctx, &auth.UserContext{
		CompanyID: companyID,
		IsSystem:  true,
	})
}

// ScanLowStock walks every company and raises low-stock alerts.
// Notification dedupe keeps repeat runs from spamming.
func (j *AlertJobs) ScanLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	companyIDs, err := j.analyticsRepo.ListCompanyIDs(ctx)
	if err != nil {
		j.logger.Error("low stock scan failed to list companies", zap.Error(err))
		return
	}

	alerted := 0
	for _, companyID := range companyIDs {
		tenantCtx := systemContext(ctx, companyID)

		materials, err := j.materialRepo.ListLowStock(tenantCtx, companyID)
		if err != nil {
			j.logger.Error("low stock scan failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
			continue
		}
		for i := range materials {
			j.notificationService.NotifyLowStock(tenantCtx, &materials[i])
			alerted++
		}
	}

	j.logger.Info("low stock scan finished",
		zap.Int("companies", len(companyIDs)),
		zap.Int("materials_alerted", alerted))
}

// ScanOverdueInvoices walks every company and raises overdue alerts for
// sent invoices past their due date.
func (j *AlertJobs) ScanOverdueInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	companyIDs, err := j.analyticsRepo.ListCompanyIDs(ctx)
	if err != nil {
		j.logger.Error("overdue scan failed to list companies", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	alerted := 0
	for _, companyID := range companyIDs {
		tenantCtx := systemContext(ctx, companyID)

		invoices, err := j.invoiceRepo.ListOverdue(tenantCtx, companyID, now)
		if err != nil {
			j.logger.Error("overdue scan failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
			continue
		}
		for i := range invoices {
			j.notificationService.NotifyInvoiceOverdue(tenantCtx, &invoices[i])
			alerted++
		}
	}

	j.logger.Info("overdue invoice scan finished",
		zap.Int("companies", len(companyIDs)),
		zap.Int("invoices_alerted", alerted))
}
