package service_test

import (
	"context"
	"testing"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNotificationService(db *gorm.DB) *service.NotificationService {
	return service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewCompanyRepository(db),
		zap.NewNop(),
	)
}

func memberContext(companyID, userID uuid.UUID, role domain.MembershipRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	})
}

func TestNotificationService_LowStockFanOut(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNotificationService(db)
	company := testutil.CreateTestCompany(t, db, "builders")

	owner := testutil.CreateTestUser(t, db, "Owner")
	staff := testutil.CreateTestUser(t, db, "Staff")
	for _, m := range []*domain.CompanyMembership{
		{UserID: owner.ID, CompanyID: company.ID, Role: domain.RoleOwner},
		{UserID: staff.ID, CompanyID: company.ID, Role: domain.RoleStaff},
	} {
		require.NoError(t, db.Create(m).Error)
	}

	material := testutil.CreateTestMaterial(t, db, company.ID, "Rebar", "2")
	systemCtx := auth.WithUserContext(context.Background(), &auth.UserContext{
		CompanyID: company.ID, IsSystem: true,
	})

	svc.NotifyLowStock(systemCtx, material)

	ownerCtx := memberContext(company.ID, owner.ID, domain.RoleOwner)
	count, err := svc.UnreadCount(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "owner is alerted")

	staffCtx := memberContext(company.ID, staff.ID, domain.RoleStaff)
	count, err = svc.UnreadCount(staffCtx)
	require.NoError(t, err)
	assert.Zero(t, count, "staff is not in the alert audience")

	t.Run("repeat alerts inside the window are suppressed", func(t *testing.T) {
		svc.NotifyLowStock(systemCtx, material)

		count, err := svc.UnreadCount(ownerCtx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("mark read clears the unread count", func(t *testing.T) {
		list, err := svc.List(ownerCtx, repository.Pagination{Page: 1, PageSize: 10}, true)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)

		require.NoError(t, svc.MarkRead(ownerCtx, list.Items[0].ID))

		count, err := svc.UnreadCount(ownerCtx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
