package models

import (
	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTemplateModel is the persistence model for ProductTemplate.
// Attribute lines are stored inline as JSON.
type ProductTemplateModel struct {
	BaseModel
	ExternalModel
	CompanyID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	Name           string                  `gorm:"type:varchar(255);not null"`
	CategoryID     *uuid.UUID              `gorm:"type:uuid"`
	ImageKey       string                  `gorm:"type:varchar(500)"`
	AttributeLines []catalog.AttributeLine `gorm:"serializer:json;type:jsonb"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_templates"
}

// ToDomain converts the persistence model to a domain ProductTemplate
func (m *ProductTemplateModel) ToDomain() *catalog.ProductTemplate {
	return &catalog.ProductTemplate{
		BaseEntity:     m.BaseModel.ToDomain(),
		ExternalRecord: m.ExternalModel.ToDomain(),
		CompanyID:      m.CompanyID,
		Name:           m.Name,
		CategoryID:     m.CategoryID,
		ImageKey:       m.ImageKey,
		AttributeLines: m.AttributeLines,
	}
}

// ProductTemplateModelFromDomain creates a persistence model from a domain ProductTemplate
func ProductTemplateModelFromDomain(t *catalog.ProductTemplate) *ProductTemplateModel {
	m := &ProductTemplateModel{
		CompanyID:      t.CompanyID,
		Name:           t.Name,
		CategoryID:     t.CategoryID,
		ImageKey:       t.ImageKey,
		AttributeLines: t.AttributeLines,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	m.FromDomainExternalRecord(t.ExternalRecord)
	return m
}

// VariantModel is the persistence model for Variant. A variant without a
// remote id stores an empty external_id and is excluded from the unique index.
type VariantModel struct {
	BaseModel
	TemplateID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	ConnectionID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	CompanyID        uuid.UUID              `gorm:"type:uuid;not null"`
	Values           []catalog.VariantValue `gorm:"serializer:json;type:jsonb"`
	ExternalID       string                 `gorm:"type:varchar(32)"`
	Barcode          string                 `gorm:"type:varchar(100)"`
	Weight           decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	WeightUnit       string                 `gorm:"type:varchar(10)"`
	InventoryItemID  string                 `gorm:"type:varchar(32)"`
	IsExternalOrigin bool                   `gorm:"not null"`
	Active           bool                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		BaseEntity:       m.BaseModel.ToDomain(),
		TemplateID:       m.TemplateID,
		ConnectionID:     m.ConnectionID,
		CompanyID:        m.CompanyID,
		Values:           m.Values,
		ExternalID:       shared.ExternalID(m.ExternalID),
		Barcode:          m.Barcode,
		Weight:           m.Weight,
		WeightUnit:       m.WeightUnit,
		InventoryItemID:  shared.ExternalID(m.InventoryItemID),
		IsExternalOrigin: m.IsExternalOrigin,
		Active:           m.Active,
	}
}

// VariantModelFromDomain creates a persistence model from a domain Variant
func VariantModelFromDomain(v *catalog.Variant) *VariantModel {
	m := &VariantModel{
		TemplateID:       v.TemplateID,
		ConnectionID:     v.ConnectionID,
		CompanyID:        v.CompanyID,
		Values:           v.Values,
		ExternalID:       v.ExternalID.String(),
		Barcode:          v.Barcode,
		Weight:           v.Weight,
		WeightUnit:       v.WeightUnit,
		InventoryItemID:  v.InventoryItemID.String(),
		IsExternalOrigin: v.IsExternalOrigin,
		Active:           v.Active,
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}

// AttributeModel is the persistence model for Attribute
type AttributeModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_attribute_name_origin,priority:1"`
	IsShopify bool   `gorm:"not null;uniqueIndex:idx_attribute_name_origin,priority:2"`
}

// TableName returns the table name for GORM
func (AttributeModel) TableName() string {
	return "product_attributes"
}

// ToDomain converts the persistence model to a domain Attribute
func (m *AttributeModel) ToDomain() *catalog.Attribute {
	return &catalog.Attribute{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name, IsShopify: m.IsShopify}
}

// AttributeModelFromDomain creates a persistence model from a domain Attribute
func AttributeModelFromDomain(a *catalog.Attribute) *AttributeModel {
	m := &AttributeModel{Name: a.Name, IsShopify: a.IsShopify}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// AttributeValueModel is the persistence model for AttributeValue
type AttributeValueModel struct {
	BaseModel
	AttributeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attribute_value_name,priority:1"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_attribute_value_name,priority:2"`
}

// TableName returns the table name for GORM
func (AttributeValueModel) TableName() string {
	return "product_attribute_values"
}

// ToDomain converts the persistence model to a domain AttributeValue
func (m *AttributeValueModel) ToDomain() *catalog.AttributeValue {
	return &catalog.AttributeValue{BaseEntity: m.BaseModel.ToDomain(), AttributeID: m.AttributeID, Name: m.Name}
}

// AttributeValueModelFromDomain creates a persistence model from a domain AttributeValue
func AttributeValueModelFromDomain(v *catalog.AttributeValue) *AttributeValueModel {
	m := &AttributeValueModel{AttributeID: v.AttributeID, Name: v.Name}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}

// CategoryModel is the persistence model for Category
type CategoryModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_name_origin,priority:1"`
	IsShopify bool   `gorm:"not null;uniqueIndex:idx_category_name_origin,priority:2"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "product_categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name, IsShopify: m.IsShopify}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name, IsShopify: c.IsShopify}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// StockQuantModel is the persistence model for StockQuant
type StockQuantModel struct {
	BaseModel
	VariantID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_quant_variant_location,priority:1"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_quant_variant_location,priority:2"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockQuantModel) TableName() string {
	return "stock_quants"
}

// ToDomain converts the persistence model to a domain StockQuant
func (m *StockQuantModel) ToDomain() *catalog.StockQuant {
	return &catalog.StockQuant{
		BaseEntity: m.BaseModel.ToDomain(),
		VariantID:  m.VariantID,
		LocationID: m.LocationID,
		Quantity:   m.Quantity,
	}
}

// StockQuantModelFromDomain creates a persistence model from a domain StockQuant
func StockQuantModelFromDomain(q *catalog.StockQuant) *StockQuantModel {
	m := &StockQuantModel{VariantID: q.VariantID, LocationID: q.LocationID, Quantity: q.Quantity}
	m.FromDomainBaseEntity(q.BaseEntity)
	return m
}
