package trade

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByExternalID finds the active order with a remote id on a connection
	FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*SalesOrder, error)

	// Create inserts an order. Returns shared.ErrDuplicateExternalID on a lost create race.
	Create(ctx context.Context, order *SalesOrder) error

	// Save updates an order
	Save(ctx context.Context, order *SalesOrder) error

	// FindLines returns an order's lines in creation order
	FindLines(ctx context.Context, orderID uuid.UUID) ([]*SalesOrderLine, error)

	// FindLineByExternalID finds a line by remote line id on a connection
	FindLineByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*SalesOrderLine, error)

	// SaveLine creates or updates a line
	SaveLine(ctx context.Context, line *SalesOrderLine) error
}

// TaxRepository persists taxes
type TaxRepository interface {
	FindByKey(ctx context.Context, companyID uuid.UUID, name string, amount decimal.Decimal, priceInclude bool) (*Tax, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Tax, error)
	Create(ctx context.Context, tax *Tax) error
}

// DeliveryRepository persists deliveries
type DeliveryRepository interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Delivery, error)
	Save(ctx context.Context, d *Delivery) error
}
