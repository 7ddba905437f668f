package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoTenantScope is returned when a tenant-scoped query runs without an
// authenticated company in the context.
var ErrNoTenantScope = errors.New("no tenant scope in context")

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not specify one
const DefaultPageSize = 50

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string
	Order SortOrder
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: "updatedAt", Order: SortOrderDesc}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the ORDER BY clause from a field whitelist.
// Unknown fields fall back to the default column.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}
	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}
	return column + " " + order
}

// Pagination holds normalized paging parameters
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps paging parameters into valid bounds
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CompanyIDFromContext extracts the tenant scope from the request context.
// Every tenant-scoped repository call goes through this; a missing or zero
// company fails closed.
func CompanyIDFromContext(ctx context.Context) (uuid.UUID, error) {
	user, ok := auth.FromContext(ctx)
	if !ok || user.CompanyID == uuid.Nil {
		return uuid.Nil, ErrNoTenantScope
	}
	return user.CompanyID, nil
}

// ApplyCompanyScope adds the tenant filter to a query. When the context
// carries no tenant the query is poisoned so it can never match rows.
func ApplyCompanyScope(ctx context.Context, query *gorm.DB) *gorm.DB {
	companyID, err := CompanyIDFromContext(ctx)
	if err != nil {
		return query.Where("1 = 0")
	}
	return query.Where("company_id = ?", companyID)
}

// ApplyCompanyScopeWithAlias adds the tenant filter on a joined table
func ApplyCompanyScopeWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	companyID, err := CompanyIDFromContext(ctx)
	if err != nil {
		return query.Where("1 = 0")
	}
	return query.Where(tableAlias+".company_id = ?", companyID)
}

// ApplyCustomerScope restricts a query to one customer. Used for client
// portal sessions; a nil customer yields no rows rather than an error.
func ApplyCustomerScope(query *gorm.DB, customerID *uuid.UUID) *gorm.DB {
	if customerID == nil {
		return query.Where("1 = 0")
	}
	return query.Where("customer_id = ?", *customerID)
}
