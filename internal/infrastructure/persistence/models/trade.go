package models

import (
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// SalesOrder
// ---------------------------------------------------------------------------

// SalesOrderModel is the persistence model for the SalesOrder aggregate root
type SalesOrderModel struct {
	BaseModel
	ExternalModel
	CompanyID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name              string           `gorm:"type:varchar(100);not null"`
	CustomerID        *uuid.UUID       `gorm:"type:uuid;index"`
	OrderDate         time.Time        `gorm:"not null"`
	WarehouseID       *uuid.UUID       `gorm:"type:uuid"`
	PaymentTermID     *uuid.UUID       `gorm:"type:uuid"`
	PaymentGatewayID  *uuid.UUID       `gorm:"type:uuid"`
	FinancialStatus   string           `gorm:"type:varchar(30)"`
	FulfillmentStatus string           `gorm:"type:varchar(30)"`
	TaxesIncluded     bool             `gorm:"not null"`
	State             trade.OrderState `gorm:"type:varchar(20);not null;index"`
	Locked            bool             `gorm:"not null"`
	ConfirmedAt       *time.Time
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	return &trade.SalesOrder{
		BaseEntity:        m.BaseModel.ToDomain(),
		ExternalRecord:    m.ExternalModel.ToDomain(),
		CompanyID:         m.CompanyID,
		Name:              m.Name,
		CustomerID:        m.CustomerID,
		OrderDate:         m.OrderDate,
		WarehouseID:       m.WarehouseID,
		PaymentTermID:     m.PaymentTermID,
		PaymentGatewayID:  m.PaymentGatewayID,
		FinancialStatus:   m.FinancialStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		TaxesIncluded:     m.TaxesIncluded,
		State:             m.State,
		Locked:            m.Locked,
		ConfirmedAt:       m.ConfirmedAt,
	}
}

// SalesOrderModelFromDomain creates a persistence model from a domain SalesOrder
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		CompanyID:         o.CompanyID,
		Name:              o.Name,
		CustomerID:        o.CustomerID,
		OrderDate:         o.OrderDate,
		WarehouseID:       o.WarehouseID,
		PaymentTermID:     o.PaymentTermID,
		PaymentGatewayID:  o.PaymentGatewayID,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		TaxesIncluded:     o.TaxesIncluded,
		State:             o.State,
		Locked:            o.Locked,
		ConfirmedAt:       o.ConfirmedAt,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	m.FromDomainExternalRecord(o.ExternalRecord)
	return m
}

// SalesOrderLineModel is the persistence model for SalesOrderLine
type SalesOrderLineModel struct {
	BaseModel
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ConnectionID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_line_external,priority:1"`
	ExternalID       string          `gorm:"type:varchar(32);index:idx_order_line_external,priority:2"`
	VariantID        *uuid.UUID      `gorm:"type:uuid"`
	Name             string          `gorm:"type:varchar(255);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxIDs           []uuid.UUID     `gorm:"serializer:json;type:jsonb"`
	IsExternalOrigin bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// ToDomain converts the persistence model to a domain SalesOrderLine
func (m *SalesOrderLineModel) ToDomain() *trade.SalesOrderLine {
	return &trade.SalesOrderLine{
		BaseEntity:       m.BaseModel.ToDomain(),
		OrderID:          m.OrderID,
		ConnectionID:     m.ConnectionID,
		ExternalID:       shared.ExternalID(m.ExternalID),
		VariantID:        m.VariantID,
		Name:             m.Name,
		UnitPrice:        m.UnitPrice,
		Quantity:         m.Quantity,
		TaxIDs:           m.TaxIDs,
		IsExternalOrigin: m.IsExternalOrigin,
	}
}

// SalesOrderLineModelFromDomain creates a persistence model from a domain SalesOrderLine
func SalesOrderLineModelFromDomain(l *trade.SalesOrderLine) *SalesOrderLineModel {
	m := &SalesOrderLineModel{
		OrderID:          l.OrderID,
		ConnectionID:     l.ConnectionID,
		ExternalID:       l.ExternalID.String(),
		VariantID:        l.VariantID,
		Name:             l.Name,
		UnitPrice:        l.UnitPrice,
		Quantity:         l.Quantity,
		TaxIDs:           l.TaxIDs,
		IsExternalOrigin: l.IsExternalOrigin,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// Tax
// ---------------------------------------------------------------------------

// TaxModel is the persistence model for Tax
type TaxModel struct {
	BaseModel
	CompanyID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_tax_key,priority:1"`
	Name         string              `gorm:"type:varchar(200);not null;uniqueIndex:idx_tax_key,priority:2"`
	Amount       decimal.Decimal     `gorm:"type:decimal(10,4);not null;uniqueIndex:idx_tax_key,priority:3"`
	PriceInclude bool                `gorm:"not null;uniqueIndex:idx_tax_key,priority:4"`
	Use          trade.TaxUse        `gorm:"column:type_tax_use;type:varchar(20);not null"`
	AmountType   trade.TaxAmountType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string {
	return "taxes"
}

// ToDomain converts the persistence model to a domain Tax
func (m *TaxModel) ToDomain() *trade.Tax {
	return &trade.Tax{
		BaseEntity:   m.BaseModel.ToDomain(),
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Amount:       m.Amount,
		PriceInclude: m.PriceInclude,
		Use:          m.Use,
		AmountType:   m.AmountType,
	}
}

// TaxModelFromDomain creates a persistence model from a domain Tax
func TaxModelFromDomain(t *trade.Tax) *TaxModel {
	m := &TaxModel{
		CompanyID:    t.CompanyID,
		Name:         t.Name,
		Amount:       t.Amount,
		PriceInclude: t.PriceInclude,
		Use:          t.Use,
		AmountType:   t.AmountType,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// Delivery
// ---------------------------------------------------------------------------

// DeliveryModel is the persistence model for Delivery
type DeliveryModel struct {
	BaseModel
	OrderID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	CompanyID     uuid.UUID           `gorm:"type:uuid;not null"`
	WarehouseID   *uuid.UUID          `gorm:"type:uuid"`
	Name          string              `gorm:"type:varchar(120);not null"`
	State         trade.DeliveryState `gorm:"type:varchar(20);not null"`
	Moves         []trade.DeliveryMove `gorm:"serializer:json;type:jsonb"`
	BackorderOfID *uuid.UUID          `gorm:"type:uuid"`
	DoneAt        *time.Time
}

// TableName returns the table name for GORM
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// ToDomain converts the persistence model to a domain Delivery
func (m *DeliveryModel) ToDomain() *trade.Delivery {
	return &trade.Delivery{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderID:       m.OrderID,
		CompanyID:     m.CompanyID,
		WarehouseID:   m.WarehouseID,
		Name:          m.Name,
		State:         m.State,
		Moves:         m.Moves,
		BackorderOfID: m.BackorderOfID,
		DoneAt:        m.DoneAt,
	}
}

// DeliveryModelFromDomain creates a persistence model from a domain Delivery
func DeliveryModelFromDomain(d *trade.Delivery) *DeliveryModel {
	m := &DeliveryModel{
		OrderID:       d.OrderID,
		CompanyID:     d.CompanyID,
		WarehouseID:   d.WarehouseID,
		Name:          d.Name,
		State:         d.State,
		Moves:         d.Moves,
		BackorderOfID: d.BackorderOfID,
		DoneAt:        d.DoneAt,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
