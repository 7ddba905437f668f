package domain_test

import (
	"testing"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name string
		role domain.MembershipRole
		perm domain.Permission
		want bool
	}{
		{"owner manages members", domain.RoleOwner, domain.PermissionMemberManage, true},
		{"owner records payments", domain.RoleOwner, domain.PermissionPaymentWrite, true},
		{"admin writes company settings", domain.RoleAdmin, domain.PermissionCompanyWrite, true},
		{"manager cannot manage members", domain.RoleManager, domain.PermissionMemberManage, false},
		{"manager records payments", domain.RoleManager, domain.PermissionPaymentWrite, true},
		{"staff writes inventory", domain.RoleStaff, domain.PermissionInventoryWrite, true},
		{"staff cannot write quotes", domain.RoleStaff, domain.PermissionQuoteWrite, false},
		{"staff cannot read analytics", domain.RoleStaff, domain.PermissionAnalyticsRead, false},
		{"client reads own invoices", domain.RoleClient, domain.PermissionInvoiceRead, true},
		{"client writes chat", domain.RoleClient, domain.PermissionChatWrite, true},
		{"client cannot read customers", domain.RoleClient, domain.PermissionCustomerRead, false},
		{"client cannot write files", domain.RoleClient, domain.PermissionFileWrite, false},
		{"no role grants admin access", domain.RoleOwner, domain.PermissionAdminAccess, false},
		{"unknown role grants nothing", domain.MembershipRole("intern"), domain.PermissionProjectRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.HasPermission(tt.role, tt.perm))
		})
	}
}

func TestPermissionsForRole(t *testing.T) {
	perms := domain.PermissionsForRole(domain.RoleClient)
	assert.NotEmpty(t, perms)

	// Mutating the returned slice must not affect the table
	perms[0] = domain.Permission("tampered")
	assert.True(t, domain.HasPermission(domain.RoleClient, domain.PermissionProjectRead))
}

func TestMembershipRole_IsValid(t *testing.T) {
	for _, role := range []domain.MembershipRole{
		domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleStaff, domain.RoleClient,
	} {
		assert.True(t, role.IsValid(), string(role))
	}
	assert.False(t, domain.MembershipRole("intern").IsValid())
	assert.False(t, domain.MembershipRole("").IsValid())
}
