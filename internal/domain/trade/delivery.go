package trade

import (
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryState is the state of an outgoing delivery (picking)
type DeliveryState string

const (
	DeliveryStateWaiting   DeliveryState = "waiting"
	DeliveryStateConfirmed DeliveryState = "confirmed"
	DeliveryStateAssigned  DeliveryState = "assigned"
	DeliveryStateDone      DeliveryState = "done"
	DeliveryStateCancel    DeliveryState = "cancel"
)

// IsOpen reports whether the delivery can still be reserved or validated
func (s DeliveryState) IsOpen() bool {
	return s != DeliveryStateDone && s != DeliveryStateCancel
}

// DeliveryMove is one product movement of a delivery
type DeliveryMove struct {
	OrderLineID uuid.UUID       `json:"order_line_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	Demand      decimal.Decimal `json:"demand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Delivery is the outgoing shipment created when an order is confirmed
type Delivery struct {
	shared.BaseEntity
	OrderID       uuid.UUID
	CompanyID     uuid.UUID
	WarehouseID   *uuid.UUID
	Name          string
	State         DeliveryState
	Moves         []DeliveryMove
	BackorderOfID *uuid.UUID
	DoneAt        *time.Time
}

// NewDelivery creates a confirmed delivery with one move per order line
func NewDelivery(order *SalesOrder, lines []*SalesOrderLine) *Delivery {
	d := &Delivery{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     order.ID,
		CompanyID:   order.CompanyID,
		WarehouseID: order.WarehouseID,
		Name:        fmt.Sprintf("%s/OUT", order.Name),
		State:       DeliveryStateConfirmed,
	}
	for _, l := range lines {
		if !l.Quantity.IsPositive() {
			continue
		}
		d.Moves = append(d.Moves, DeliveryMove{
			OrderLineID: l.ID,
			VariantID:   l.VariantID,
			Name:        l.Name,
			Demand:      l.Quantity,
			Reserved:    decimal.Zero,
			Quantity:    decimal.Zero,
		})
	}
	return d
}

// Assign reserves stock for every move. Stock availability is not tracked by
// the connector, so reservation covers the full demand.
func (d *Delivery) Assign() error {
	if !d.State.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reserve delivery in %s state", d.State))
	}
	for i := range d.Moves {
		d.Moves[i].Reserved = d.Moves[i].Demand
	}
	d.State = DeliveryStateAssigned
	d.Touch()
	return nil
}

// SetQuantitiesToDemand sets every move's done quantity to its demand
func (d *Delivery) SetQuantitiesToDemand() {
	for i := range d.Moves {
		d.Moves[i].Quantity = d.Moves[i].Demand
	}
	d.Touch()
}

// Validate marks the delivery done. Moves without a done quantity take their
// reserved quantity. When some demand remains and createBackorder is set, a
// backorder delivery carrying the remainder is returned.
func (d *Delivery) Validate(createBackorder bool) (*Delivery, error) {
	if !d.State.IsOpen() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate delivery in %s state", d.State))
	}

	var remaining []DeliveryMove
	for i := range d.Moves {
		m := &d.Moves[i]
		if m.Quantity.IsZero() {
			m.Quantity = m.Reserved
		}
		if left := m.Demand.Sub(m.Quantity); left.IsPositive() {
			remaining = append(remaining, DeliveryMove{
				OrderLineID: m.OrderLineID,
				VariantID:   m.VariantID,
				Name:        m.Name,
				Demand:      left,
				Reserved:    decimal.Zero,
				Quantity:    decimal.Zero,
			})
		}
	}

	now := time.Now()
	d.State = DeliveryStateDone
	d.DoneAt = &now
	d.Touch()

	if !createBackorder || len(remaining) == 0 {
		return nil, nil
	}
	parent := d.ID
	return &Delivery{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       d.OrderID,
		CompanyID:     d.CompanyID,
		WarehouseID:   d.WarehouseID,
		Name:          d.Name + "/BO",
		State:         DeliveryStateConfirmed,
		Moves:         remaining,
		BackorderOfID: &parent,
	}, nil
}

// HasDoneDelivery reports whether any delivery is done
func HasDoneDelivery(deliveries []*Delivery) bool {
	for _, d := range deliveries {
		if d.State == DeliveryStateDone {
			return true
		}
	}
	return false
}
