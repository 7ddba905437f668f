package domain

// Permission names an action in resource:operation form
type Permission string

const (
	PermissionCompanyRead    Permission = "company:read"
	PermissionCompanyWrite   Permission = "company:write"
	PermissionMemberManage   Permission = "member:manage"
	PermissionCustomerRead   Permission = "customer:read"
	PermissionCustomerWrite  Permission = "customer:write"
	PermissionProjectRead    Permission = "project:read"
	PermissionProjectWrite   Permission = "project:write"
	PermissionQuoteRead      Permission = "quote:read"
	PermissionQuoteWrite     Permission = "quote:write"
	PermissionInvoiceRead    Permission = "invoice:read"
	PermissionInvoiceWrite   Permission = "invoice:write"
	PermissionPaymentWrite   Permission = "payment:write"
	PermissionInventoryRead  Permission = "inventory:read"
	PermissionInventoryWrite Permission = "inventory:write"
	PermissionEquipmentRead  Permission = "equipment:read"
	PermissionEquipmentWrite Permission = "equipment:write"
	PermissionWorkOrderRead  Permission = "workorder:read"
	PermissionWorkOrderWrite Permission = "workorder:write"
	PermissionChatRead       Permission = "chat:read"
	PermissionChatWrite      Permission = "chat:write"
	PermissionFileRead       Permission = "file:read"
	PermissionFileWrite      Permission = "file:write"
	PermissionAnalyticsRead  Permission = "analytics:read"
	PermissionAdminAccess    Permission = "admin:access"
)

// rolePermissions is the fixed authorization table. Roles are evaluated per
// company membership; a role grants the same permissions in every tenant.
var rolePermissions = map[MembershipRole][]Permission{
	RoleOwner: {
		PermissionCompanyRead, PermissionCompanyWrite, PermissionMemberManage,
		PermissionCustomerRead, PermissionCustomerWrite,
		PermissionProjectRead, PermissionProjectWrite,
		PermissionQuoteRead, PermissionQuoteWrite,
		PermissionInvoiceRead, PermissionInvoiceWrite, PermissionPaymentWrite,
		PermissionInventoryRead, PermissionInventoryWrite,
		PermissionEquipmentRead, PermissionEquipmentWrite,
		PermissionWorkOrderRead, PermissionWorkOrderWrite,
		PermissionChatRead, PermissionChatWrite,
		PermissionFileRead, PermissionFileWrite,
		PermissionAnalyticsRead,
	},
	RoleAdmin: {
		PermissionCompanyRead, PermissionCompanyWrite, PermissionMemberManage,
		PermissionCustomerRead, PermissionCustomerWrite,
		PermissionProjectRead, PermissionProjectWrite,
		PermissionQuoteRead, PermissionQuoteWrite,
		PermissionInvoiceRead, PermissionInvoiceWrite, PermissionPaymentWrite,
		PermissionInventoryRead, PermissionInventoryWrite,
		PermissionEquipmentRead, PermissionEquipmentWrite,
		PermissionWorkOrderRead, PermissionWorkOrderWrite,
		PermissionChatRead, PermissionChatWrite,
		PermissionFileRead, PermissionFileWrite,
		PermissionAnalyticsRead,
	},
	RoleManager: {
		PermissionCompanyRead,
		PermissionCustomerRead, PermissionCustomerWrite,
		PermissionProjectRead, PermissionProjectWrite,
		PermissionQuoteRead, PermissionQuoteWrite,
		PermissionInvoiceRead, PermissionInvoiceWrite, PermissionPaymentWrite,
		PermissionInventoryRead, PermissionInventoryWrite,
		PermissionEquipmentRead, PermissionEquipmentWrite,
		PermissionWorkOrderRead, PermissionWorkOrderWrite,
		PermissionChatRead, PermissionChatWrite,
		PermissionFileRead, PermissionFileWrite,
		PermissionAnalyticsRead,
	},
	RoleStaff: {
		PermissionCompanyRead,
		PermissionCustomerRead,
		PermissionProjectRead, PermissionProjectWrite,
		PermissionQuoteRead,
		PermissionInvoiceRead,
		PermissionInventoryRead, PermissionInventoryWrite,
		PermissionEquipmentRead,
		PermissionWorkOrderRead,
		PermissionChatRead, PermissionChatWrite,
		PermissionFileRead, PermissionFileWrite,
	},
	RoleClient: {
		PermissionProjectRead,
		PermissionQuoteRead,
		PermissionInvoiceRead,
		PermissionChatRead, PermissionChatWrite,
		PermissionFileRead,
	},
}

// HasPermission reports whether a role grants the given permission.
// Unknown roles grant nothing.
func HasPermission(role MembershipRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns the permissions granted to a role
func PermissionsForRole(role MembershipRole) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
