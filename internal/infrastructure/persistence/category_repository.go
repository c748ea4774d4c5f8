package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByName finds a category by exact name and origin
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string, isShopify bool) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_shopify = ?", name, isShopify).
		First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrCategoryNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a category
func (r *GormCategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Create(models.CategoryModelFromDomain(c)).Error
}

// Ensure GormCategoryRepository implements CategoryRepository interface
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
