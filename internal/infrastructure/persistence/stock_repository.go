package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockRepository implements catalog.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// AvailableQuantity sums the quants of a variant at a location
func (r *GormStockRepository) AvailableQuantity(ctx context.Context, variantID, locationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockQuantModel{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("variant_id = ? AND location_id = ?", variantID, locationID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a quant
func (r *GormStockRepository) Save(ctx context.Context, q *catalog.StockQuant) error {
	return r.db.WithContext(ctx).Save(models.StockQuantModelFromDomain(q)).Error
}

var _ catalog.StockRepository = (*GormStockRepository)(nil)
