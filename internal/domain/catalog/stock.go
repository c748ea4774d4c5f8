package catalog

import (
	"context"
	"errors"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrStockQuantInvalid is returned for a quant without a variant or location
var ErrStockQuantInvalid = errors.New("catalog: stock quant needs a variant and a location")

// StockQuant is a quantity of a variant held at a stock location. The
// available quantity at a location is the sum of its quants.
type StockQuant struct {
	shared.BaseEntity
	VariantID  uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
}

// NewStockQuant creates a quant
func NewStockQuant(variantID, locationID uuid.UUID, quantity decimal.Decimal) (*StockQuant, error) {
	if variantID == uuid.Nil || locationID == uuid.Nil {
		return nil, ErrStockQuantInvalid
	}
	return &StockQuant{
		BaseEntity: shared.NewBaseEntity(),
		VariantID:  variantID,
		LocationID: locationID,
		Quantity:   quantity,
	}, nil
}

// ExportableQuantity is the whole-unit quantity reported to the remote
// store: fractions are truncated and negative stock is reported as zero
func ExportableQuantity(available decimal.Decimal) int64 {
	if available.IsNegative() {
		return 0
	}
	return available.IntPart()
}

// StockRepository reads and records stock levels
type StockRepository interface {
	// AvailableQuantity sums the quants of a variant at a location, zero when there are none
	AvailableQuantity(ctx context.Context, variantID, locationID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, q *StockQuant) error
}
