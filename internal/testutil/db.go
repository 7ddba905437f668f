// Package testutil provides shared helpers for database-backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/database"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory database with the full schema.
// Each test gets its own database; nothing leaks between tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...), "failed to migrate test schema")
	return db
}

// CreateTestCompany creates a tenant with a unique slug
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	company := &domain.Company{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Currency: "USD",
		Settings: "{}",
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestUser creates a login account with a unique email
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Name:         name,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealhash",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCustomer creates a customer in the given company
func CreateTestCustomer(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		CompanyID: companyID,
		Name:      name,
		Email:     "customer@example.com",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestProject creates a project in the given company
func CreateTestProject(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		CompanyID: companyID,
		Name:      name,
		Status:    domain.ProjectStatusInProgress,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestMaterial creates a material with the given stock level
func CreateTestMaterial(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string, stock string) *domain.Material {
	t.Helper()
	material := &domain.Material{
		CompanyID:     companyID,
		Name:          name,
		Unit:          "pcs",
		UnitPrice:     decimal.RequireFromString("10.00"),
		StockQuantity: decimal.RequireFromString(stock),
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

// ContextForRole builds a request context authenticated as a member of the
// given company with the given role.
func ContextForRole(companyID uuid.UUID, role domain.MembershipRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:    uuid.New(),
		Email:     "member@example.com",
		Name:      "Test Member",
		CompanyID: companyID,
		Role:      role,
	})
}

// ContextForClient builds a client portal session bound to a customer
func ContextForClient(companyID uuid.UUID, customerID uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:     uuid.New(),
		Email:      "client@example.com",
		Name:       "Test Client",
		CompanyID:  companyID,
		Role:       domain.RoleClient,
		CustomerID: &customerID,
	})
}
