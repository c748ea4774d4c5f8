package trade

import (
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("trade: sales order not found")
	ErrOrderLineNotFound = errors.New("trade: sales order line not found")
	ErrTaxNotFound       = errors.New("trade: tax not found")
	ErrDeliveryNotFound  = errors.New("trade: delivery not found")
)

// ---------------------------------------------------------------------------
// OrderState
// ---------------------------------------------------------------------------

// OrderState represents the state of a sales order
type OrderState string

const (
	OrderStateDraft  OrderState = "draft"
	OrderStateSent   OrderState = "sent"
	OrderStateSale   OrderState = "sale"
	OrderStateDone   OrderState = "done"
	OrderStateCancel OrderState = "cancel"
)

// IsValid checks if the state is a valid OrderState
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateDraft, OrderStateSent, OrderStateSale, OrderStateDone, OrderStateCancel:
		return true
	}
	return false
}

// String returns the string representation of OrderState
func (s OrderState) String() string {
	return string(s)
}

// IsTerminal reports whether remote scalar updates must no longer be written
func (s OrderState) IsTerminal() bool {
	return s == OrderStateSale || s == OrderStateCancel
}

// CanTransitionTo checks if the state can transition to the target state
func (s OrderState) CanTransitionTo(target OrderState) bool {
	switch s {
	case OrderStateDraft, OrderStateSent:
		return target == OrderStateSale || target == OrderStateCancel
	case OrderStateSale:
		return target == OrderStateDone || target == OrderStateCancel
	case OrderStateDone, OrderStateCancel:
		return false
	}
	return false
}

// ---------------------------------------------------------------------------
// SalesOrder
// ---------------------------------------------------------------------------

// OrderHeader is the scalar field-set a remote order writes onto a local order
type OrderHeader struct {
	Name              string
	CustomerID        *uuid.UUID
	OrderDate         time.Time
	WarehouseID       *uuid.UUID
	PaymentTermID     *uuid.UUID
	PaymentGatewayID  *uuid.UUID
	FinancialStatus   string
	FulfillmentStatus string
	TaxesIncluded     bool
}

// SalesOrder is a local order mirrored from a remote order
type SalesOrder struct {
	shared.BaseEntity
	shared.ExternalRecord
	CompanyID         uuid.UUID
	Name              string
	CustomerID        *uuid.UUID
	OrderDate         time.Time
	WarehouseID       *uuid.UUID
	PaymentTermID     *uuid.UUID
	PaymentGatewayID  *uuid.UUID
	FinancialStatus   string
	FulfillmentStatus string
	TaxesIncluded     bool
	State             OrderState
	Locked            bool
	ConfirmedAt       *time.Time
}

// NewSalesOrder creates a draft order imported from the remote store
func NewSalesOrder(connectionID, companyID uuid.UUID, externalID shared.ExternalID, header OrderHeader) (*SalesOrder, error) {
	if externalID.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Order external id is required")
	}
	o := &SalesOrder{
		BaseEntity:     shared.NewBaseEntity(),
		ExternalRecord: shared.NewExternalRecord(connectionID, externalID),
		CompanyID:      companyID,
		State:          OrderStateDraft,
	}
	o.setHeader(header)
	return o, nil
}

// IsTerminal reports whether the order has passed the point where remote
// scalar updates are ignored
func (o *SalesOrder) IsTerminal() bool {
	return o.State.IsTerminal()
}

// ApplyHeader overwrites scalar fields unless the order is terminal.
// Returns false when the update was ignored.
func (o *SalesOrder) ApplyHeader(h OrderHeader) bool {
	if o.IsTerminal() {
		return false
	}
	o.setHeader(h)
	return true
}

func (o *SalesOrder) setHeader(h OrderHeader) {
	o.Name = h.Name
	o.CustomerID = h.CustomerID
	o.OrderDate = h.OrderDate
	o.WarehouseID = h.WarehouseID
	o.PaymentTermID = h.PaymentTermID
	o.PaymentGatewayID = h.PaymentGatewayID
	o.FinancialStatus = h.FinancialStatus
	o.FulfillmentStatus = h.FulfillmentStatus
	o.TaxesIncluded = h.TaxesIncluded
	o.Touch()
}

// IsFulfilled reports whether the remote side reported full fulfilment
func (o *SalesOrder) IsFulfilled() bool {
	return o.FulfillmentStatus == "fulfilled"
}

// Confirm moves a draft or sent order to sale
func (o *SalesOrder) Confirm() error {
	if !o.State.CanTransitionTo(OrderStateSale) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s state", o.State))
	}
	now := time.Now()
	o.State = OrderStateSale
	o.ConfirmedAt = &now
	o.Touch()
	return nil
}

// Cancel cancels an order that is not done
func (o *SalesOrder) Cancel() error {
	if !o.State.CanTransitionTo(OrderStateCancel) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s state", o.State))
	}
	o.State = OrderStateCancel
	o.Touch()
	return nil
}

// Lock locks a confirmed order against further edits
func (o *SalesOrder) Lock() error {
	if o.State != OrderStateSale {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot lock order in %s state", o.State))
	}
	if o.Locked {
		return shared.NewDomainError("ALREADY_LOCKED", "Order is already locked")
	}
	o.Locked = true
	o.Touch()
	return nil
}

// ---------------------------------------------------------------------------
// SalesOrderLine
// ---------------------------------------------------------------------------

// SalesOrderLine is one order line, keyed by the remote line id on a connection
type SalesOrderLine struct {
	shared.BaseEntity
	OrderID          uuid.UUID
	ConnectionID     uuid.UUID
	ExternalID       shared.ExternalID
	VariantID        *uuid.UUID
	Name             string
	UnitPrice        decimal.Decimal
	Quantity         decimal.Decimal
	TaxIDs           []uuid.UUID
	IsExternalOrigin bool
}

// LineValues is the field-set a remote line item writes onto a local line
type LineValues struct {
	VariantID *uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	TaxIDs    []uuid.UUID
}

// NewSalesOrderLine creates a line on an order
func NewSalesOrderLine(order *SalesOrder, externalID shared.ExternalID, values LineValues) (*SalesOrderLine, error) {
	if externalID.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Order line external id is required")
	}
	l := &SalesOrderLine{
		BaseEntity:       shared.NewBaseEntity(),
		OrderID:          order.ID,
		ConnectionID:     order.ConnectionID,
		ExternalID:       externalID,
		IsExternalOrigin: true,
	}
	l.Apply(values)
	return l, nil
}

// Apply overwrites the line's values
func (l *SalesOrderLine) Apply(v LineValues) {
	l.VariantID = v.VariantID
	l.Name = v.Name
	l.UnitPrice = v.UnitPrice
	l.Quantity = v.Quantity
	l.TaxIDs = append([]uuid.UUID(nil), v.TaxIDs...)
	l.Touch()
}

// Subtotal is quantity times unit price
func (l *SalesOrderLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
