package repository_test

import (
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInvoiceRepo(db *gorm.DB) *repository.InvoiceRepository {
	return repository.NewInvoiceRepository(db, repository.NewNumberSequenceRepository(db))
}

func TestInvoiceRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := newInvoiceRepo(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleAdmin)

	first := &domain.Invoice{
		CompanyID: company.ID,
		Status:    domain.InvoiceStatusDraft,
		Total:     decimal.RequireFromString("100.00"),
	}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "INV-000001", first.InvoiceNumber)

	second := &domain.Invoice{
		CompanyID: company.ID,
		Status:    domain.InvoiceStatusDraft,
		Items: []domain.LineItem{
			{Description: "Framing", Type: domain.LineItemTypeLabor,
				Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("50.00"),
				Total: decimal.RequireFromString("100.00")},
		},
	}
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "INV-000002", second.InvoiceNumber)

	found, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Framing", found.Items[0].Description)
}

func TestInvoiceRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := newInvoiceRepo(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleAdmin)

	invoice := &domain.Invoice{CompanyID: company.ID, Status: domain.InvoiceStatusDraft}
	require.NoError(t, repo.Create(ctx, invoice))

	err := repo.UpdateStatus(ctx, invoice.ID,
		[]domain.InvoiceStatus{domain.InvoiceStatusDraft}, domain.InvoiceStatusSent)
	require.NoError(t, err)

	// Repeating the same transition matches no row
	err = repo.UpdateStatus(ctx, invoice.ID,
		[]domain.InvoiceStatus{domain.InvoiceStatusDraft}, domain.InvoiceStatusSent)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestInvoiceRepository_RecordPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := newInvoiceRepo(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleAdmin)

	newSentInvoice := func(total string) *domain.Invoice {
		invoice := &domain.Invoice{
			CompanyID: company.ID,
			Status:    domain.InvoiceStatusSent,
			Total:     decimal.RequireFromString(total),
		}
		require.NoError(t, repo.Create(ctx, invoice))
		return invoice
	}

	payment := func(amount string) *domain.Payment {
		return &domain.Payment{
			Amount: decimal.RequireFromString(amount),
			Method: domain.PaymentMethodBankTransfer,
			PaidAt: time.Now().UTC(),
		}
	}

	t.Run("partial payment keeps invoice sent", func(t *testing.T) {
		invoice := newSentInvoice("100.00")

		updated, err := repo.RecordPayment(ctx, company.ID, invoice.ID, payment("40.00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, updated.Status)
		assert.Nil(t, updated.PaidDate)

		paid, err := repo.SumPayments(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, paid.Equal(decimal.RequireFromString("40.00")))
	})

	t.Run("reaching the total flips to paid and stamps the date", func(t *testing.T) {
		invoice := newSentInvoice("100.00")

		_, err := repo.RecordPayment(ctx, company.ID, invoice.ID, payment("60.00"))
		require.NoError(t, err)

		updated, err := repo.RecordPayment(ctx, company.ID, invoice.ID, payment("40.00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)
		require.NotNil(t, updated.PaidDate)
	})

	t.Run("payment beyond the balance is rejected", func(t *testing.T) {
		invoice := newSentInvoice("100.00")

		_, err := repo.RecordPayment(ctx, company.ID, invoice.ID, payment("80.00"))
		require.NoError(t, err)

		_, err = repo.RecordPayment(ctx, company.ID, invoice.ID, payment("20.01"))
		assert.ErrorIs(t, err, repository.ErrPaymentExceedsBalance)

		// The rejected payment left nothing behind
		paid, err := repo.SumPayments(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, paid.Equal(decimal.RequireFromString("80.00")))
	})
}

func TestInvoiceRepository_ListOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := newInvoiceRepo(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleAdmin)

	now := time.Now().UTC()
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)

	overdue := &domain.Invoice{CompanyID: company.ID, Status: domain.InvoiceStatusSent, DueDate: &past}
	current := &domain.Invoice{CompanyID: company.ID, Status: domain.InvoiceStatusSent, DueDate: &future}
	draft := &domain.Invoice{CompanyID: company.ID, Status: domain.InvoiceStatusDraft, DueDate: &past}
	for _, inv := range []*domain.Invoice{overdue, current, draft} {
		require.NoError(t, repo.Create(ctx, inv))
	}

	invoices, err := repo.ListOverdue(ctx, company.ID, now)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, overdue.ID, invoices[0].ID)
}
