package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialRepository_RecordUsage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRepository(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	project := testutil.CreateTestProject(t, db, company.ID, "Warehouse")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	t.Run("decrements stock and writes usage row", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Rebar", "100")

		err := repo.RecordUsage(ctx, &domain.MaterialUsage{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("30"),
			UnitPrice:  material.UnitPrice,
			UsedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, found.StockQuantity.Equal(decimal.RequireFromString("70")),
			"stock is %s", found.StockQuantity)

		usages, total, err := repo.ListUsage(ctx, repository.Pagination{Page: 1, PageSize: 10}, &project.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.True(t, usages[0].Quantity.Equal(decimal.RequireFromString("30")))
	})

	t.Run("shortfall rolls back and leaves stock unchanged", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Cement", "5")

		err := repo.RecordUsage(ctx, &domain.MaterialUsage{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("6"),
			UnitPrice:  material.UnitPrice,
			UsedAt:     time.Now().UTC(),
		})
		assert.ErrorIs(t, err, repository.ErrInsufficientStock)

		found, err := repo.GetByID(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, found.StockQuantity.Equal(decimal.RequireFromString("5")))

		var count int64
		require.NoError(t, db.Model(&domain.MaterialUsage{}).
			Where("material_id = ?", material.ID).Count(&count).Error)
		assert.Zero(t, count, "no usage row should survive the rollback")
	})

	t.Run("usage to exactly zero is allowed", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Gravel", "8")

		err := repo.RecordUsage(ctx, &domain.MaterialUsage{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("8"),
			UnitPrice:  material.UnitPrice,
			UsedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, found.StockQuantity.IsZero())
	})
}

func TestMaterialRepository_ListLowStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRepository(db)
	company := testutil.CreateTestCompany(t, db, "builders")

	min := decimal.RequireFromString("10")
	low := &domain.Material{
		CompanyID: company.ID, Name: "Bolts", Unit: "pcs",
		StockQuantity: decimal.RequireFromString("10"), MinStockLevel: &min,
	}
	ok := &domain.Material{
		CompanyID: company.ID, Name: "Nuts", Unit: "pcs",
		StockQuantity: decimal.RequireFromString("11"), MinStockLevel: &min,
	}
	// No minimum configured, never alerts regardless of stock
	untracked := &domain.Material{
		CompanyID: company.ID, Name: "Washers", Unit: "pcs",
		StockQuantity: decimal.Zero,
	}
	require.NoError(t, db.Create(low).Error)
	require.NoError(t, db.Create(ok).Error)
	require.NoError(t, db.Create(untracked).Error)

	materials, err := repo.ListLowStock(context.Background(), company.ID)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Bolts", materials[0].Name)
}

func TestMaterialRepository_TenantScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRepository(db)
	companyA := testutil.CreateTestCompany(t, db, "alpha")
	companyB := testutil.CreateTestCompany(t, db, "beta")
	material := testutil.CreateTestMaterial(t, db, companyA.ID, "Rebar", "100")

	t.Run("other tenant cannot read", func(t *testing.T) {
		ctxB := testutil.ContextForRole(companyB.ID, domain.RoleOwner)
		_, err := repo.GetByID(ctxB, material.ID)
		assert.Error(t, err)
	})

	t.Run("unauthenticated context matches nothing", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), material.ID)
		assert.Error(t, err)

		materials, total, err := repo.List(context.Background(), repository.Pagination{Page: 1, PageSize: 10}, "")
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, materials)
	})

	t.Run("owning tenant reads normally", func(t *testing.T) {
		ctxA := testutil.ContextForRole(companyA.ID, domain.RoleStaff)
		found, err := repo.GetByID(ctxA, material.ID)
		require.NoError(t, err)
		assert.Equal(t, material.ID, found.ID)
	})
}

func TestPaginationNormalize(t *testing.T) {
	p := repository.Pagination{Page: 0, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, repository.DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = repository.Pagination{Page: 3, PageSize: 500}
	p.Normalize()
	assert.Equal(t, repository.MaxPageSize, p.PageSize)
	assert.Equal(t, 2*repository.MaxPageSize, p.Offset())
}
