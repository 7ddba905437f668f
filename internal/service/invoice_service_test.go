package service_test

import (
	"testing"

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

func newInvoiceService(db *gorm.DB) *service.InvoiceService {
	invoiceRepo := repository.NewInvoiceRepository(db, repository.NewNumberSequenceRepository(db))
	return service.NewInvoiceService(invoiceRepo, nil, zap.NewNop())
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	newInvoice := func() *domain.InvoiceDTO {
		invoice, err := svc.Create(ctx, &domain.CreateInvoiceRequest{
			TaxAmount: decimal.RequireFromString("10.00"),
			Items: []domain.LineItemInput{
				{Description: "Concrete", Type: domain.LineItemTypeMaterial,
					Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("30.00")},
			},
		})
		require.NoError(t, err)
		return invoice
	}

	t.Run("create computes totals and starts draft", func(t *testing.T) {
		invoice := newInvoice()
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		assert.True(t, invoice.Subtotal.Equal(decimal.RequireFromString("90.00")))
		assert.True(t, invoice.Total.Equal(decimal.RequireFromString("100.00")))
		assert.NotEmpty(t, invoice.InvoiceNumber)
	})

	t.Run("send stamps a due date when none set", func(t *testing.T) {
		invoice := newInvoice()

		sent, err := svc.Send(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
		require.NotNil(t, sent.DueDate)

		// Re-sending is rejected
		_, err = svc.Send(ctx, invoice.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("only draft invoices can be edited", func(t *testing.T) {
		invoice := newInvoice()
		_, err := svc.Send(ctx, invoice.ID)
		require.NoError(t, err)

		tax := decimal.RequireFromString("5.00")
		_, err = svc.Update(ctx, invoice.ID, &domain.UpdateInvoiceRequest{TaxAmount: &tax})
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("paid invoices cannot be cancelled", func(t *testing.T) {
		invoice := newInvoice()
		_, err := svc.Send(ctx, invoice.ID)
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("100.00"),
			Method: domain.PaymentMethodCard,
		})
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, invoice.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	newSentInvoice := func() *domain.InvoiceDTO {
		invoice, err := svc.Create(ctx, &domain.CreateInvoiceRequest{
			Items: []domain.LineItemInput{
				{Description: "Roofing", Quantity: decimal.RequireFromString("1"),
					UnitPrice: decimal.RequireFromString("200.00")},
			},
		})
		require.NoError(t, err)
		sent, err := svc.Send(ctx, invoice.ID)
		require.NoError(t, err)
		return sent
	}

	t.Run("payments accumulate until the invoice is settled", func(t *testing.T) {
		invoice := newSentInvoice()

		partial, err := svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("150.00"),
			Method: domain.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, partial.Status)
		assert.True(t, partial.AmountPaid.Equal(decimal.RequireFromString("150.00")))
		assert.True(t, partial.Balance.Equal(decimal.RequireFromString("50.00")))

		settled, err := svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("50.00"),
			Method: domain.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, settled.Status)
		require.NotNil(t, settled.PaidDate)
		assert.True(t, settled.Balance.IsZero())
		assert.Len(t, settled.Payments, 2)
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		invoice := newSentInvoice()

		_, err := svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("200.01"),
			Method: domain.PaymentMethodCard,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("payments require a sent invoice", func(t *testing.T) {
		draft, err := svc.Create(ctx, &domain.CreateInvoiceRequest{
			Items: []domain.LineItemInput{
				{Description: "Siding", Quantity: decimal.RequireFromString("1"),
					UnitPrice: decimal.RequireFromString("80.00")},
			},
		})
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, draft.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("80.00"),
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("amount and method are validated", func(t *testing.T) {
		invoice := newSentInvoice()

		_, err := svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.Zero,
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = svc.RecordPayment(ctx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("10.00"),
			Method: domain.PaymentMethod("bitcoin"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("staff role cannot record payments", func(t *testing.T) {
		invoice := newSentInvoice()
		staffCtx := testutil.ContextForRole(company.ID, domain.RoleStaff)

		_, err := svc.RecordPayment(staffCtx, invoice.ID, &domain.RecordPaymentRequest{
			Amount: decimal.RequireFromString("10.00"),
			Method: domain.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestInvoiceService_ClientVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	company := testutil.CreateTestCompany(t, db, "builders")
	ctx := testutil.ContextForRole(company.ID, domain.RoleManager)

	mine := testutil.CreateTestCustomer(t, db, company.ID, "Mine")
	other := testutil.CreateTestCustomer(t, db, company.ID, "Other")

	invoice, err := svc.Create(ctx, &domain.CreateInvoiceRequest{CustomerID: &other.ID})
	require.NoError(t, err)

	clientCtx := testutil.ContextForClient(company.ID, mine.ID)
	_, err = svc.GetByID(clientCtx, invoice.ID)
	assert.ErrorIs(t, err, service.ErrNotFound, "another customer's invoice reads as missing")

	list, err := svc.List(clientCtx, repository.Pagination{Page: 1, PageSize: 10}, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
