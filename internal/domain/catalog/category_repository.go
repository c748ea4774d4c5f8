package catalog

import "context"

// CategoryRepository persists categories
type CategoryRepository interface {
	// FindByName finds a category by exact name and origin flag
	FindByName(ctx context.Context, name string, isShopify bool) (*Category, error)

	// Create inserts a category
	Create(ctx context.Context, c *Category) error
}
