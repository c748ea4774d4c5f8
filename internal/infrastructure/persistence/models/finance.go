package models

import (
	"time"

	"github.com/erp/shopify-connector/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for Invoice; lines are stored inline
type InvoiceModel struct {
	BaseModel
	OrderID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	CompanyID      uuid.UUID            `gorm:"type:uuid;not null"`
	CustomerID     *uuid.UUID           `gorm:"type:uuid"`
	JournalID      *uuid.UUID           `gorm:"type:uuid"`
	InvoiceDate    time.Time            `gorm:"type:date;not null"`
	State          finance.InvoiceState `gorm:"type:varchar(20);not null"`
	Lines          []finance.InvoiceLine `gorm:"serializer:json;type:jsonb"`
	AmountTotal    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountResidual decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentState   finance.PaymentState `gorm:"type:varchar(20);not null"`
	PostedAt       *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	return &finance.Invoice{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderID:        m.OrderID,
		CompanyID:      m.CompanyID,
		CustomerID:     m.CustomerID,
		JournalID:      m.JournalID,
		InvoiceDate:    m.InvoiceDate,
		State:          m.State,
		Lines:          m.Lines,
		AmountTotal:    m.AmountTotal,
		AmountResidual: m.AmountResidual,
		PaymentState:   m.PaymentState,
		PostedAt:       m.PostedAt,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(i *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		OrderID:        i.OrderID,
		CompanyID:      i.CompanyID,
		CustomerID:     i.CustomerID,
		JournalID:      i.JournalID,
		InvoiceDate:    i.InvoiceDate,
		State:          i.State,
		Lines:          i.Lines,
		AmountTotal:    i.AmountTotal,
		AmountResidual: i.AmountResidual,
		PaymentState:   i.PaymentState,
		PostedAt:       i.PostedAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// PaymentModel is the persistence model for Payment
type PaymentModel struct {
	BaseModel
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid"`
	JournalID       *uuid.UUID      `gorm:"type:uuid"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time       `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		CompanyID:       m.CompanyID,
		CustomerID:      m.CustomerID,
		JournalID:       m.JournalID,
		PaymentMethodID: m.PaymentMethodID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:       p.InvoiceID,
		CompanyID:       p.CompanyID,
		CustomerID:      p.CustomerID,
		JournalID:       p.JournalID,
		PaymentMethodID: p.PaymentMethodID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
