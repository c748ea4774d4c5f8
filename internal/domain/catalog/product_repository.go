package catalog

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product template and variant persistence
type ProductRepository interface {
	// FindByExternalID finds the active template with a remote id on a connection
	FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*ProductTemplate, error)

	// FindAllByExternalID finds every active template with a remote id on a connection
	FindAllByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) ([]*ProductTemplate, error)

	// Create inserts a template. Returns shared.ErrDuplicateExternalID on a lost create race.
	Create(ctx context.Context, t *ProductTemplate) error

	// Save updates a template
	Save(ctx context.Context, t *ProductTemplate) error

	// FindVariants returns a template's variants in creation order
	FindVariants(ctx context.Context, templateID uuid.UUID) ([]*Variant, error)

	// FindVariantByExternalID finds the active variant with a remote variant id
	FindVariantByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*Variant, error)

	// FindExportableVariants returns a connection's active variants that carry
	// a remote variant id, in creation order
	FindExportableVariants(ctx context.Context, connectionID uuid.UUID) ([]*Variant, error)

	// SaveVariant creates or updates a variant
	SaveVariant(ctx context.Context, v *Variant) error
}

// AttributeRepository persists attributes and their values
type AttributeRepository interface {
	FindByName(ctx context.Context, name string, isShopify bool) (*Attribute, error)
	Create(ctx context.Context, a *Attribute) error
	FindValue(ctx context.Context, attributeID uuid.UUID, name string) (*AttributeValue, error)
	CreateValue(ctx context.Context, v *AttributeValue) error
}
