package finance

import (
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an inbound customer payment reconciled with an invoice
type Payment struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID
	CompanyID       uuid.UUID
	CustomerID      *uuid.UUID
	JournalID       *uuid.UUID
	PaymentMethodID *uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
}

// RegisterPayment pays the invoice's full residual and returns the payment
func RegisterPayment(inv *Invoice, journalID, methodID *uuid.UUID, date time.Time) (*Payment, error) {
	amount := inv.AmountResidual
	if err := inv.ApplyPayment(amount); err != nil {
		return nil, err
	}
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		InvoiceID:       inv.ID,
		CompanyID:       inv.CompanyID,
		CustomerID:      inv.CustomerID,
		JournalID:       journalID,
		PaymentMethodID: methodID,
		Amount:          amount,
		PaymentDate:     date,
	}, nil
}
