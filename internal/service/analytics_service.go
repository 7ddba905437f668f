package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AnalyticsService computes company-scoped rollups over decimal sums.
// All aggregation happens in memory; the repositories only fetch rows.
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
	materialRepo  *repository.MaterialRepository
	userRepo      *repository.UserRepository
	companyRepo   *repository.CompanyRepository
	projectRepo   *repository.ProjectRepository
	logger        *zap.Logger
}

func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	materialRepo *repository.MaterialRepository,
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		materialRepo:  materialRepo,
		userRepo:      userRepo,
		companyRepo:   companyRepo,
		projectRepo:   projectRepo,
		logger:        logger,
	}
}

// InvoiceAnalytics summarizes invoicing and collection for the company
func (s *AnalyticsService) InvoiceAnalytics(ctx context.Context) (*domain.InvoiceAnalyticsDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionAnalyticsRead)
	if err != nil {
		return nil, err
	}

	invoices, err := s.analyticsRepo.ListInvoicesWithPayments(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	now := time.Now().UTC()
	out := &domain.InvoiceAnalyticsDTO{
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		OverdueAmount:    decimal.Zero,
		AverageInvoice:   decimal.Zero,
		CountByStatus:    map[string]int{},
	}

	billedCount := 0
	for i := range invoices {
		inv := &invoices[i]
		out.CountByStatus[string(inv.Status)]++
		out.TotalInvoiceCount++

		if inv.Status == domain.InvoiceStatusCancelled || inv.Status == domain.InvoiceStatusDraft {
			continue
		}

		paid := decimal.Zero
		for _, p := range inv.Payments {
			paid = paid.Add(p.Amount)
		}

		out.TotalInvoiced = out.TotalInvoiced.Add(inv.Total)
		out.TotalPaid = out.TotalPaid.Add(paid)
		out.TotalOutstanding = out.TotalOutstanding.Add(inv.Total.Sub(paid))
		billedCount++

		if inv.Status == domain.InvoiceStatusPaid {
			out.PaidInvoiceCount++
		}
		if inv.Status == domain.InvoiceStatusSent && inv.DueDate != nil && inv.DueDate.Before(now) {
			out.OverdueCount++
			out.OverdueAmount = out.OverdueAmount.Add(inv.Total.Sub(paid))
		}
	}

	if billedCount > 0 {
		out.AverageInvoice = out.TotalInvoiced.Div(decimal.NewFromInt(int64(billedCount))).Round(2)
	}
	return out, nil
}

// MaterialAnalytics summarizes material usage cost, invoiced labor cost and
// the ten most expensive materials. Ties keep first-usage order so repeated
// runs over the same data rank identically.
func (s *AnalyticsService) MaterialAnalytics(ctx context.Context) (*domain.MaterialAnalyticsDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionAnalyticsRead)
	if err != nil {
		return nil, err
	}

	usages, err := s.materialRepo.ListUsageForCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	type rollup struct {
		name string
		qty  decimal.Decimal
		cost decimal.Decimal
	}
	byMaterial := map[uuid.UUID]*rollup{}
	order := make([]uuid.UUID, 0, len(usages))
	total := decimal.Zero
	for i := range usages {
		u := &usages[i]
		cost := u.Quantity.Mul(u.UnitPrice)
		total = total.Add(cost)

		r, ok := byMaterial[u.MaterialID]
		if !ok {
			r = &rollup{qty: decimal.Zero, cost: decimal.Zero}
			if u.Material != nil {
				r.name = u.Material.Name
			}
			byMaterial[u.MaterialID] = r
			order = append(order, u.MaterialID)
		}
		r.qty = r.qty.Add(u.Quantity)
		r.cost = r.cost.Add(cost)
	}

	items := make([]domain.MaterialCostDTO, 0, len(order))
	for _, id := range order {
		r := byMaterial[id]
		items = append(items, domain.MaterialCostDTO{
			MaterialID:   id,
			MaterialName: r.name,
			TotalQty:     r.qty,
			TotalCost:    r.cost,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalCost.GreaterThan(items[j].TotalCost)
	})
	if len(items) > 10 {
		items = items[:10]
	}

	laborItems, err := s.analyticsRepo.ListLaborLineItems(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load labor items: %w", err)
	}
	labor := decimal.Zero
	for i := range laborItems {
		labor = labor.Add(laborItems[i].Total)
	}

	lowStock, err := s.materialRepo.ListLowStock(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}

	return &domain.MaterialAnalyticsDTO{
		TotalUsageCost: total,
		TotalLaborCost: labor,
		TotalCost:      total.Add(labor),
		TopMaterials:   items,
		LowStockCount:  len(lowStock),
	}, nil
}

// ProjectAnalytics computes per-project revenue, cost and profit. Revenue is
// the money collected on the project's invoices; cost is material usage plus
// subcontracted work.
func (s *AnalyticsService) ProjectAnalytics(ctx context.Context) ([]domain.ProjectAnalyticsDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionAnalyticsRead)
	if err != nil {
		return nil, err
	}

	projects, err := s.analyticsRepo.ListProjects(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	invoices, err := s.analyticsRepo.ListInvoicesWithPayments(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	usages, err := s.materialRepo.ListUsageForCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	workOrders, err := s.analyticsRepo.ListWorkOrders(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work orders: %w", err)
	}

	revenue := map[uuid.UUID]decimal.Decimal{}
	for i := range invoices {
		inv := &invoices[i]
		if inv.ProjectID == nil {
			continue
		}
		for _, p := range inv.Payments {
			revenue[*inv.ProjectID] = revenue[*inv.ProjectID].Add(p.Amount)
		}
	}

	materialCost := map[uuid.UUID]decimal.Decimal{}
	for i := range usages {
		materialCost[usages[i].ProjectID] = materialCost[usages[i].ProjectID].Add(usages[i].Quantity.Mul(usages[i].UnitPrice))
	}

	laborCost := map[uuid.UUID]decimal.Decimal{}
	for i := range workOrders {
		wo := &workOrders[i]
		if wo.ProjectID == nil {
			continue
		}
		laborCost[*wo.ProjectID] = laborCost[*wo.ProjectID].Add(wo.Amount)
	}

	out := make([]domain.ProjectAnalyticsDTO, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		rev := revenue[p.ID]
		mat := materialCost[p.ID]
		labor := laborCost[p.ID]
		out = append(out, domain.ProjectAnalyticsDTO{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			Status:       p.Status,
			Budget:       p.Budget,
			Revenue:      rev,
			MaterialCost: mat,
			LaborCost:    labor,
			Profit:       rev.Sub(mat).Sub(labor),
		})
	}
	return out, nil
}

// RevenueAnalytics buckets collected payments by calendar month of PaidAt.
// The optional range filters on payment date, inclusive.
func (s *AnalyticsService) RevenueAnalytics(ctx context.Context, from, to *time.Time) (*domain.RevenueAnalyticsDTO, error) {
	user, err := RequirePermission(ctx, domain.PermissionAnalyticsRead)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidInput)
	}

	invoices, err := s.analyticsRepo.ListInvoicesWithPayments(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	buckets := map[string]decimal.Decimal{}
	total := decimal.Zero
	for i := range invoices {
		for _, p := range invoices[i].Payments {
			if from != nil && p.PaidAt.Before(*from) {
				continue
			}
			if to != nil && p.PaidAt.After(*to) {
				continue
			}
			month := p.PaidAt.UTC().Format("2006-01")
			buckets[month] = buckets[month].Add(p.Amount)
			total = total.Add(p.Amount)
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	out := &domain.RevenueAnalyticsDTO{TotalRevenue: total}
	for _, m := range months {
		out.ByMonth = append(out.ByMonth, domain.RevenueBucketDTO{Month: m, Revenue: buckets[m]})
	}
	return out, nil
}

// AdminStats aggregates across every tenant. Restricted to admin sessions.
func (s *AnalyticsService) AdminStats(ctx context.Context) (*domain.AdminStatsDTO, error) {
	if _, err := RequirePermission(ctx, domain.PermissionAdminAccess); err != nil {
		return nil, err
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	companies, err := s.companyRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	projects, err := s.projectRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	revenue, err := s.analyticsRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return &domain.AdminStatsDTO{
		TotalUsers:     users,
		TotalCompanies: companies,
		TotalProjects:  projects,
		TotalRevenue:   revenue,
	}, nil
}
