package auth

import (
	"context"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user_context"

// UserContext holds the authenticated caller for one request. CompanyID and
// Role come from the session token and identify the active membership;
// CustomerID is set only for client-role sessions linked to a customer.
type UserContext struct {
	UserID     uuid.UUID
	Email      string
	Name       string
	CompanyID  uuid.UUID
	Role       domain.MembershipRole
	CustomerID *uuid.UUID
	IsSystem   bool
}

// WithUserContext adds user context to the request context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext retrieves user context from the request context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasPermission checks whether the caller's role grants a permission.
// System sessions bypass the role table.
func (u *UserContext) HasPermission(perm domain.Permission) bool {
	if u.IsSystem {
		return true
	}
	return domain.HasPermission(u.Role, perm)
}

// IsClient reports whether the session belongs to a customer portal user
func (u *UserContext) IsClient() bool {
	return u.Role == domain.RoleClient
}
