package service_test

import (
	"testing"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newInventoryService(db *gorm.DB) *service.InventoryService {
	return service.NewInventoryService(
		repository.NewMaterialRepository(db),
		repository.NewSupplierRepository(db),
		repository.NewPurchaseOrderRepository(db),
		repository.NewProjectRepository(db),
		nil,
		zap.NewNop(),
	)
}

func TestInventoryService_RecordUsage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInventoryService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	project := testutil.CreateTestProject(t, db, company.ID, "Warehouse")
	ctx := testutil.ContextForRole(company.ID, domain.RoleStaff)

	t.Run("consumes stock and snapshots the unit price", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Rebar", "50")

		dto, err := svc.RecordUsage(ctx, &domain.RecordUsageRequest{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("20"),
		})
		require.NoError(t, err)
		assert.True(t, dto.UnitPrice.Equal(material.UnitPrice))
		assert.True(t, dto.TotalCost.Equal(decimal.RequireFromString("200.00")))

		found, err := svc.GetMaterial(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, found.StockQuantity.Equal(decimal.RequireFromString("30")))
	})

	t.Run("shortfall is rejected", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Cement", "3")

		_, err := svc.RecordUsage(ctx, &domain.RecordUsageRequest{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("4"),
		})
		assert.ErrorIs(t, err, service.ErrInsufficientStock)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Gravel", "10")

		_, err := svc.RecordUsage(ctx, &domain.RecordUsageRequest{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.Zero,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown project is rejected", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Sand", "10")

		_, err := svc.RecordUsage(ctx, &domain.RecordUsageRequest{
			MaterialID: material.ID,
			ProjectID:  uuid.New(),
			Quantity:   decimal.RequireFromString("1"),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("client sessions cannot write inventory", func(t *testing.T) {
		material := testutil.CreateTestMaterial(t, db, company.ID, "Pipes", "10")
		customer := testutil.CreateTestCustomer(t, db, company.ID, "Acme")
		clientCtx := testutil.ContextForClient(company.ID, customer.ID)

		_, err := svc.RecordUsage(clientCtx, &domain.RecordUsageRequest{
			MaterialID: material.ID,
			ProjectID:  project.ID,
			Quantity:   decimal.RequireFromString("1"),
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestInventoryService_CrossTenantReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInventoryService(db)
	companyA := testutil.CreateTestCompany(t, db, "alpha")
	companyB := testutil.CreateTestCompany(t, db, "beta")
	material := testutil.CreateTestMaterial(t, db, companyA.ID, "Rebar", "10")

	// Existence is not revealed across tenants
	ctxB := testutil.ContextForRole(companyB.ID, domain.RoleOwner)
	_, err := svc.GetMaterial(ctxB, material.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestInventoryService_PurchaseOrderLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInventoryService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	supplier, err := svc.CreateSupplier(ctx, &domain.CreateSupplierRequest{Name: "Steel Co"})
	require.NoError(t, err)

	material := testutil.CreateTestMaterial(t, db, company.ID, "Beams", "10")

	newPO := func() *domain.PurchaseOrderDTO {
		po, err := svc.CreatePurchaseOrder(ctx, &domain.CreatePurchaseOrderRequest{
			SupplierID: supplier.ID,
			Items: []domain.PurchaseOrderItemInput{
				{MaterialID: material.ID, Quantity: decimal.RequireFromString("25"),
					UnitCost: decimal.RequireFromString("8.00")},
			},
		})
		require.NoError(t, err)
		require.Equal(t, domain.PurchaseOrderStatusDraft, po.Status)
		return po
	}

	t.Run("receive books items into stock", func(t *testing.T) {
		po := newPO()

		ordered, err := svc.MarkOrdered(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PurchaseOrderStatusOrdered, ordered.Status)

		before, err := svc.GetMaterial(ctx, material.ID)
		require.NoError(t, err)

		received, err := svc.ReceivePurchaseOrder(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PurchaseOrderStatusReceived, received.Status)
		require.NotNil(t, received.ReceivedAt)

		after, err := svc.GetMaterial(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, after.StockQuantity.Equal(before.StockQuantity.Add(decimal.RequireFromString("25"))))
	})

	t.Run("receiving twice is rejected and stock stays put", func(t *testing.T) {
		po := newPO()

		_, err := svc.ReceivePurchaseOrder(ctx, po.ID)
		require.NoError(t, err)

		before, err := svc.GetMaterial(ctx, material.ID)
		require.NoError(t, err)

		_, err = svc.ReceivePurchaseOrder(ctx, po.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)

		after, err := svc.GetMaterial(ctx, material.ID)
		require.NoError(t, err)
		assert.True(t, after.StockQuantity.Equal(before.StockQuantity))
	})

	t.Run("cancelled orders cannot be received", func(t *testing.T) {
		po := newPO()

		cancelled, err := svc.CancelPurchaseOrder(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PurchaseOrderStatusCancelled, cancelled.Status)

		_, err = svc.ReceivePurchaseOrder(ctx, po.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("received orders cannot be cancelled", func(t *testing.T) {
		po := newPO()

		_, err := svc.ReceivePurchaseOrder(ctx, po.ID)
		require.NoError(t, err)

		_, err = svc.CancelPurchaseOrder(ctx, po.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}
