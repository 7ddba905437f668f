package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newQuoteService(db *gorm.DB) *service.QuoteService {
	invoiceRepo := repository.NewInvoiceRepository(db, repository.NewNumberSequenceRepository(db))
	return service.NewQuoteService(repository.NewQuoteRepository(db), invoiceRepo, zap.NewNop())
}

func createQuote(t *testing.T, svc *service.QuoteService, ctx context.Context) *domain.QuoteDTO {
	t.Helper()
	quote, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		Title:     "Garage build",
		TaxAmount: decimal.RequireFromString("25.00"),
		Items: []domain.LineItemInput{
			{Description: "Foundation", Type: domain.LineItemTypeLabor,
				Quantity: decimal.RequireFromString("10"), UnitPrice: decimal.RequireFromString("40.00"), SortOrder: 1},
			{Description: "Lumber", Type: domain.LineItemTypeMaterial,
				Quantity: decimal.RequireFromString("5"), UnitPrice: decimal.RequireFromString("20.00"), SortOrder: 2},
		},
	})
	require.NoError(t, err)
	return quote
}

func TestQuoteService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	quote := createQuote(t, svc, ctx)
	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("525.00")))
	assert.Len(t, quote.Items, 2)

	t.Run("negative line price is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateQuoteRequest{
			Title: "Bad",
			Items: []domain.LineItemInput{
				{Description: "Oops", Quantity: decimal.RequireFromString("1"),
					UnitPrice: decimal.RequireFromString("-1.00")},
			},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestQuoteService_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	t.Run("send stamps a validity window", func(t *testing.T) {
		quote := createQuote(t, svc, ctx)

		sent, err := svc.Send(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusSent, sent.Status)
		require.NotNil(t, sent.ValidUntil)
		assert.True(t, sent.ValidUntil.After(time.Now()))
	})

	t.Run("approve requires a sent quote", func(t *testing.T) {
		quote := createQuote(t, svc, ctx)

		_, err := svc.Approve(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)

		_, err = svc.Send(ctx, quote.ID)
		require.NoError(t, err)

		approved, err := svc.Approve(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusApproved, approved.Status)

		// A settled quote cannot flip to rejected
		_, err = svc.Reject(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("sent quotes cannot be edited or deleted", func(t *testing.T) {
		quote := createQuote(t, svc, ctx)
		_, err := svc.Send(ctx, quote.ID)
		require.NoError(t, err)

		title := "New title"
		_, err = svc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{Title: &title})
		assert.ErrorIs(t, err, service.ErrInvalidState)

		err = svc.Delete(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("draft quotes delete cleanly", func(t *testing.T) {
		quote := createQuote(t, svc, ctx)
		require.NoError(t, svc.Delete(ctx, quote.ID))

		_, err := svc.GetByID(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestQuoteService_ConvertToInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	approvedQuote := func() *domain.QuoteDTO {
		quote := createQuote(t, svc, ctx)
		_, err := svc.Send(ctx, quote.ID)
		require.NoError(t, err)
		approved, err := svc.Approve(ctx, quote.ID)
		require.NoError(t, err)
		return approved
	}

	t.Run("copies money fields and line items", func(t *testing.T) {
		quote := approvedQuote()

		invoice, err := svc.ConvertToInvoice(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, invoice.Status)
		assert.True(t, invoice.Subtotal.Equal(decimal.RequireFromString("500.00")))
		assert.True(t, invoice.Total.Equal(decimal.RequireFromString("525.00")))
		assert.Len(t, invoice.Items, 2)
		require.NotNil(t, invoice.QuoteID)
		assert.Equal(t, quote.ID, *invoice.QuoteID)

		require.NotNil(t, invoice.DueDate)
		wantDue := time.Now().UTC().AddDate(0, 0, 30)
		assert.WithinDuration(t, wantDue, *invoice.DueDate, time.Hour)

		assert.Regexp(t, `^INV-\d{6}$`, invoice.InvoiceNumber)
	})

	t.Run("converting twice is rejected", func(t *testing.T) {
		quote := approvedQuote()

		_, err := svc.ConvertToInvoice(ctx, quote.ID)
		require.NoError(t, err)

		_, err = svc.ConvertToInvoice(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("only approved quotes convert", func(t *testing.T) {
		quote := createQuote(t, svc, ctx)

		_, err := svc.ConvertToInvoice(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("invoice numbers stay sequential across conversions", func(t *testing.T) {
		first, err := svc.ConvertToInvoice(ctx, approvedQuote().ID)
		require.NoError(t, err)
		second, err := svc.ConvertToInvoice(ctx, approvedQuote().ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	})
}
