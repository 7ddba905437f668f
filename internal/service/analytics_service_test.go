package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAnalyticsService(db *gorm.DB) *service.AnalyticsService {
	return service.NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewMaterialRepository(db),
		repository.NewUserRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewProjectRepository(db),
		zap.NewNop(),
	)
}

func TestAnalyticsService_InvoiceAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAnalyticsService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleOwner)

	now := time.Now().UTC()
	pastDue := now.AddDate(0, 0, -5)

	invoices := []*domain.Invoice{
		{CompanyID: company.ID, InvoiceNumber: "INV-000001", Status: domain.InvoiceStatusDraft,
			Total: decimal.RequireFromString("100.00")},
		{CompanyID: company.ID, InvoiceNumber: "INV-000002", Status: domain.InvoiceStatusCancelled,
			Total: decimal.RequireFromString("50.00")},
		{CompanyID: company.ID, InvoiceNumber: "INV-000003", Status: domain.InvoiceStatusSent,
			Total: decimal.RequireFromString("200.00"), DueDate: &pastDue,
			Payments: []domain.Payment{
				{Amount: decimal.RequireFromString("50.00"), Method: domain.PaymentMethodCash, PaidAt: now},
			}},
		{CompanyID: company.ID, InvoiceNumber: "INV-000004", Status: domain.InvoiceStatusPaid,
			Total: decimal.RequireFromString("100.00"), PaidDate: &now,
			Payments: []domain.Payment{
				{Amount: decimal.RequireFromString("100.00"), Method: domain.PaymentMethodCard, PaidAt: now},
			}},
	}
	for _, inv := range invoices {
		require.NoError(t, db.Create(inv).Error)
	}

	out, err := svc.InvoiceAnalytics(ctx)
	require.NoError(t, err)

	// Draft and cancelled invoices are counted but never summed
	assert.Equal(t, 4, out.TotalInvoiceCount)
	assert.Equal(t, 1, out.CountByStatus["draft"])
	assert.Equal(t, 1, out.CountByStatus["cancelled"])
	assert.True(t, out.TotalInvoiced.Equal(decimal.RequireFromString("300.00")), "invoiced is %s", out.TotalInvoiced)
	assert.True(t, out.TotalPaid.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, out.TotalOutstanding.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, 1, out.OverdueCount)
	assert.True(t, out.OverdueAmount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, 1, out.PaidInvoiceCount)
	assert.True(t, out.AverageInvoice.Equal(decimal.RequireFromString("150.00")))
}

func TestAnalyticsService_MaterialAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAnalyticsService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	project := testutil.CreateTestProject(t, db, company.ID, "Warehouse")
	ctx := testutil.ContextForRole(company.ID, domain.RoleOwner)

	usedAt := time.Now().UTC()
	addUsage := func(name string, qty, price string) {
		material := &domain.Material{
			CompanyID: company.ID, Name: name, Unit: "pcs",
			UnitPrice: decimal.RequireFromString(price),
		}
		require.NoError(t, db.Create(material).Error)
		require.NoError(t, db.Create(&domain.MaterialUsage{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString(qty),
			UnitPrice:  decimal.RequireFromString(price),
			UsedAt:     usedAt,
		}).Error)
	}

	t.Run("ties keep first-usage order and the list is capped at ten", func(t *testing.T) {
		// Two materials at the same cost plus eleven cheaper ones
		addUsage("Zinc", "10", "5.00")
		addUsage("Alum", "5", "10.00")
		for i := 0; i < 11; i++ {
			addUsage(fmt.Sprintf("Filler %02d", i), "1", "1.00")
		}

		out, err := svc.MaterialAnalytics(ctx)
		require.NoError(t, err)
		require.Len(t, out.TopMaterials, 10)

		assert.Equal(t, "Zinc", out.TopMaterials[0].MaterialName, "first used ranks first on a tie")
		assert.Equal(t, "Alum", out.TopMaterials[1].MaterialName)
		assert.True(t, out.TopMaterials[0].TotalCost.Equal(decimal.RequireFromString("50.00")))

		// 50 + 50 + 11 * 1
		assert.True(t, out.TotalUsageCost.Equal(decimal.RequireFromString("111.00")))
		assert.True(t, out.TotalLaborCost.IsZero())
		assert.True(t, out.TotalCost.Equal(out.TotalUsageCost))
	})

	t.Run("repeat usage of one material rolls up", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Rebar", "100")
		for i := 0; i < 3; i++ {
			require.NoError(t, db.Create(&domain.MaterialUsage{
				MaterialID: material.ID,
				ProjectID:  project.ID,
				Quantity:   decimal.RequireFromString("2"),
				UnitPrice:  decimal.RequireFromString("30.00"),
				UsedAt:     usedAt,
			}).Error)
		}

		out, err := svc.MaterialAnalytics(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, out.TopMaterials)
		assert.Equal(t, "Rebar", out.TopMaterials[0].MaterialName)
		assert.True(t, out.TopMaterials[0].TotalQty.Equal(decimal.RequireFromString("6")))
		assert.True(t, out.TopMaterials[0].TotalCost.Equal(decimal.RequireFromString("180.00")))
	})
}

func TestAnalyticsService_MaterialAnalytics_LaborCost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAnalyticsService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	project := testutil.CreateTestProject(t, db, company.ID, "Warehouse")
	ctx := testutil.ContextForRole(company.ID, domain.RoleOwner)

	material := testutil.CreateTestMaterial(t, db, company.ID, "Cement", "100")
	require.NoError(t, db.Create(&domain.MaterialUsage{
		MaterialID: material.ID,
		ProjectID:  project.ID,
		Quantity:   decimal.RequireFromString("2"),
		UnitPrice:  decimal.RequireFromString("25.00"),
		UsedAt:     time.Now().UTC(),
	}).Error)

	invoice := &domain.Invoice{
		CompanyID: company.ID, InvoiceNumber: "INV-000001", Status: domain.InvoiceStatusSent,
		Total: decimal.RequireFromString("500.00"),
		Items: []domain.LineItem{
			{Description: "Framing crew", Type: domain.LineItemTypeLabor,
				Quantity:  decimal.RequireFromString("8"),
				UnitPrice: decimal.RequireFromString("50.00"),
				Total:     decimal.RequireFromString("400.00")},
			{Description: "Lumber", Type: domain.LineItemTypeMaterial,
				Quantity:  decimal.RequireFromString("1"),
				UnitPrice: decimal.RequireFromString("100.00"),
				Total:     decimal.RequireFromString("100.00")},
		},
	}
	require.NoError(t, db.Create(invoice).Error)

	// Labor on a quote is not yet invoiced and must not count
	quote := &domain.Quote{
		CompanyID: company.ID, QuoteNumber: "Q-000001", Status: domain.QuoteStatusDraft,
		Total: decimal.RequireFromString("900.00"),
		Items: []domain.LineItem{
			{Description: "Roofing crew", Type: domain.LineItemTypeLabor,
				Quantity:  decimal.RequireFromString("10"),
				UnitPrice: decimal.RequireFromString("90.00"),
				Total:     decimal.RequireFromString("900.00")},
		},
	}
	require.NoError(t, db.Create(quote).Error)

	out, err := svc.MaterialAnalytics(ctx)
	require.NoError(t, err)
	assert.True(t, out.TotalUsageCost.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, out.TotalLaborCost.Equal(decimal.RequireFromString("400.00")), "labor is %s", out.TotalLaborCost)
	assert.True(t, out.TotalCost.Equal(decimal.RequireFromString("450.00")))
}

func TestAnalyticsService_RevenueAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAnalyticsService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleOwner)

	jan := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	invoice := &domain.Invoice{
		CompanyID: company.ID, InvoiceNumber: "INV-000001", Status: domain.InvoiceStatusPaid,
		Total: decimal.RequireFromString("300.00"),
		Payments: []domain.Payment{
			{Amount: decimal.RequireFromString("100.00"), Method: domain.PaymentMethodCash, PaidAt: jan},
			{Amount: decimal.RequireFromString("50.00"), Method: domain.PaymentMethodCash, PaidAt: jan.AddDate(0, 0, 3)},
			{Amount: decimal.RequireFromString("150.00"), Method: domain.PaymentMethodCard, PaidAt: mar},
		},
	}
	require.NoError(t, db.Create(invoice).Error)

	t.Run("buckets by month in order", func(t *testing.T) {
		out, err := svc.RevenueAnalytics(ctx, nil, nil)
		require.NoError(t, err)
		assert.True(t, out.TotalRevenue.Equal(decimal.RequireFromString("300.00")))
		require.Len(t, out.ByMonth, 2)
		assert.Equal(t, "2025-01", out.ByMonth[0].Month)
		assert.True(t, out.ByMonth[0].Revenue.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, "2025-03", out.ByMonth[1].Month)
	})

	t.Run("range filters on payment date", func(t *testing.T) {
		from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		out, err := svc.RevenueAnalytics(ctx, &from, nil)
		require.NoError(t, err)
		assert.True(t, out.TotalRevenue.Equal(decimal.RequireFromString("150.00")))
		require.Len(t, out.ByMonth, 1)
		assert.Equal(t, "2025-03", out.ByMonth[0].Month)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.RevenueAnalytics(ctx, &from, &to)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAnalyticsService_AdminStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAnalyticsService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	testutil.CreateTestUser(t, db, "Someone")
	testutil.CreateTestProject(t, db, company.ID, "Warehouse")

	t.Run("owner sessions are denied", func(t *testing.T) {
		ctx := testutil.ContextForRole(company.ID, domain.RoleOwner)
		_, err := svc.AdminStats(ctx)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("system sessions aggregate across tenants", func(t *testing.T) {
		ctx := auth.WithUserContext(context.Background(), &auth.UserContext{IsSystem: true})
		out, err := svc.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.TotalUsers)
		assert.Equal(t, int64(1), out.TotalCompanies)
		assert.Equal(t, int64(1), out.TotalProjects)
	})
}
