package auth_test

import (
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(secret string) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{JWTSecret: secret, TokenTTL: 60})
}

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := newTokenManager("test-secret")
	customerID := uuid.New()

	user := &auth.UserContext{
		UserID:     uuid.New(),
		Email:      "jo@example.com",
		Name:       "Jo Builder",
		CompanyID:  uuid.New(),
		Role:       domain.RoleClient,
		CustomerID: &customerID,
	}

	token, expiresAt, err := manager.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), expiresAt, time.Minute)

	parsed, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, parsed.UserID)
	assert.Equal(t, user.Email, parsed.Email)
	assert.Equal(t, user.CompanyID, parsed.CompanyID)
	assert.Equal(t, user.Role, parsed.Role)
	require.NotNil(t, parsed.CustomerID)
	assert.Equal(t, customerID, *parsed.CustomerID)
	assert.False(t, parsed.IsSystem)
}

func TestTokenManager_Validate(t *testing.T) {
	manager := newTokenManager("test-secret")

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := newTokenManager("other-secret")
		token, _, err := other.Issue(&auth.UserContext{
			UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleStaff,
		})
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: -1})
		token, _, err := expired.Issue(&auth.UserContext{
			UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleStaff,
		})
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := manager.Validate("not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		token, _, err := manager.Issue(&auth.UserContext{
			UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.MembershipRole("superuser"),
		})
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestUserContext_HasPermission(t *testing.T) {
	staff := &auth.UserContext{Role: domain.RoleStaff}
	assert.True(t, staff.HasPermission(domain.PermissionInventoryWrite))
	assert.False(t, staff.HasPermission(domain.PermissionPaymentWrite))

	system := &auth.UserContext{IsSystem: true}
	assert.True(t, system.HasPermission(domain.PermissionAdminAccess))
}
