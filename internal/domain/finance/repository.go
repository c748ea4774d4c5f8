package finance

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	// FindByOrder returns an order's invoices in creation order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	Create(ctx context.Context, p *Payment) error
}
