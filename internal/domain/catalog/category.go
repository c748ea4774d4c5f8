package catalog

import (
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
)

// Category is a product category created on demand from a remote product type.
// Categories are unique by (name, IsShopify) and never deleted by the connector.
type Category struct {
	shared.BaseEntity
	Name      string
	IsShopify bool
}

// NewCategory creates a category
func NewCategory(name string, isShopify bool) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		IsShopify:  isShopify,
	}, nil
}
