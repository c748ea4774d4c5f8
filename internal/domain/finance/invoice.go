package finance

import (
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound  = errors.New("finance: invoice not found")
	ErrNothingToInvoice = errors.New("finance: nothing to invoice")
)

// InvoiceState represents the state of a customer invoice
type InvoiceState string

const (
	InvoiceStateDraft  InvoiceState = "draft"
	InvoiceStatePosted InvoiceState = "posted"
	InvoiceStateCancel InvoiceState = "cancel"
)

// PaymentState represents how much of an invoice is paid
type PaymentState string

const (
	PaymentStateNotPaid PaymentState = "not_paid"
	PaymentStatePartial PaymentState = "partial"
	PaymentStatePaid    PaymentState = "paid"
)

// InvoiceLine is one billed order line
type InvoiceLine struct {
	OrderLineID uuid.UUID       `json:"order_line_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// Total is the line subtotal plus tax
func (l InvoiceLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Add(l.TaxAmount)
}

// Invoice is a customer invoice raised from a sales order
type Invoice struct {
	shared.BaseEntity
	OrderID        uuid.UUID
	CompanyID      uuid.UUID
	CustomerID     *uuid.UUID
	JournalID      *uuid.UUID
	InvoiceDate    time.Time
	State          InvoiceState
	Lines          []InvoiceLine
	AmountTotal    decimal.Decimal
	AmountResidual decimal.Decimal
	PaymentState   PaymentState
	PostedAt       *time.Time
}

// NewInvoice creates a draft invoice. An invoice needs at least one line.
func NewInvoice(orderID, companyID uuid.UUID, customerID, journalID *uuid.UUID, date time.Time, lines []InvoiceLine) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, ErrNothingToInvoice
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return &Invoice{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		CompanyID:      companyID,
		CustomerID:     customerID,
		JournalID:      journalID,
		InvoiceDate:    date,
		State:          InvoiceStateDraft,
		Lines:          lines,
		AmountTotal:    total,
		AmountResidual: total,
		PaymentState:   PaymentStateNotPaid,
	}, nil
}

// IsCancelled reports whether the invoice was cancelled
func (i *Invoice) IsCancelled() bool {
	return i.State == InvoiceStateCancel
}

// Post validates a draft invoice
func (i *Invoice) Post() error {
	if i.State != InvoiceStateDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post invoice in %s state", i.State))
	}
	now := time.Now()
	i.State = InvoiceStatePosted
	i.PostedAt = &now
	i.Touch()
	return nil
}

// NeedsPayment reports whether a payment can still be registered
func (i *Invoice) NeedsPayment() bool {
	return i.State == InvoiceStatePosted &&
		(i.PaymentState == PaymentStateNotPaid || i.PaymentState == PaymentStatePartial) &&
		!i.AmountResidual.IsZero()
}

// ApplyPayment reduces the residual of a posted invoice
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if i.State != InvoiceStatePosted {
		return shared.NewDomainError("INVALID_STATE", "Payments can only be registered on posted invoices")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(i.AmountResidual) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds the residual amount")
	}
	i.AmountResidual = i.AmountResidual.Sub(amount)
	if i.AmountResidual.IsZero() {
		i.PaymentState = PaymentStatePaid
	} else {
		i.PaymentState = PaymentStatePartial
	}
	i.Touch()
	return nil
}

// SetInvoiceDate overwrites the accounting date
func (i *Invoice) SetInvoiceDate(date time.Time) {
	i.InvoiceDate = date
	i.Touch()
}

// FirstOpenInvoice returns the first invoice that is not cancelled, or nil
func FirstOpenInvoice(invoices []*Invoice) *Invoice {
	for _, inv := range invoices {
		if !inv.IsCancelled() {
			return inv
		}
	}
	return nil
}
