package service

import (
	"context"
	"errors"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"gorm.io/gorm"
)

// RequirePermission resolves the caller from context and checks that their
// role grants the permission. Missing authentication fails before the
// permission check.
func RequirePermission(ctx context.Context, perm domain.Permission) (*auth.UserContext, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !user.HasPermission(perm) {
		return nil, ErrPermissionDenied
	}
	return user, nil
}

// translateNotFound maps a gorm record miss to the service vocabulary.
// Cross-tenant reads also land here, so existence is never revealed.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
