package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), nil, nil, time.Now(), []InvoiceLine{
		{Name: "A", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), TaxAmount: decimal.NewFromInt(18)},
		{Name: "B", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("9.99"), TaxAmount: decimal.Zero},
	})
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	inv := newTestInvoice(t)
	assert.Equal(t, InvoiceStateDraft, inv.State)
	assert.Equal(t, PaymentStateNotPaid, inv.PaymentState)
	assert.True(t, decimal.RequireFromString("127.99").Equal(inv.AmountTotal))
	assert.True(t, inv.AmountTotal.Equal(inv.AmountResidual))

	_, err := NewInvoice(uuid.New(), uuid.New(), nil, nil, time.Now(), nil)
	assert.ErrorIs(t, err, ErrNothingToInvoice)
}

func TestInvoice_PostAndPay(t *testing.T) {
	inv := newTestInvoice(t)
	assert.False(t, inv.NeedsPayment(), "draft invoices cannot be paid")
	assert.Error(t, inv.ApplyPayment(decimal.NewFromInt(1)))

	require.NoError(t, inv.Post())
	assert.Error(t, inv.Post())
	assert.True(t, inv.NeedsPayment())

	require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(27)))
	assert.Equal(t, PaymentStatePartial, inv.PaymentState)
	assert.True(t, inv.NeedsPayment())

	journal := uuid.New()
	payment, err := RegisterPayment(inv, &journal, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.99").Equal(payment.Amount))
	assert.Equal(t, PaymentStatePaid, inv.PaymentState)
	assert.True(t, inv.AmountResidual.IsZero())
	assert.False(t, inv.NeedsPayment())
	assert.Equal(t, &journal, payment.JournalID)
}

func TestInvoice_ApplyPaymentLimits(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Post())

	assert.Error(t, inv.ApplyPayment(decimal.Zero))
	assert.Error(t, inv.ApplyPayment(decimal.NewFromInt(1000)))
}

func TestFirstOpenInvoice(t *testing.T) {
	cancelled := newTestInvoice(t)
	cancelled.State = InvoiceStateCancel
	open := newTestInvoice(t)

	assert.Same(t, open, FirstOpenInvoice([]*Invoice{cancelled, open}))
	assert.Nil(t, FirstOpenInvoice([]*Invoice{cancelled}))
	assert.Nil(t, FirstOpenInvoice(nil))
}
