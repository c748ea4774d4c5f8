package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/domain/trade"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, trade.ErrOrderNotFound)
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds the active order with a remote id on a connection
func (r *GormSalesOrderRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ? AND active = ?", connectionID, externalID.String(), true).
		First(&model).Error; err != nil {
		return nil, notFound(err, trade.ErrOrderNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a new order header
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	return duplicateExternalID(r.db.WithContext(ctx).Create(models.SalesOrderModelFromDomain(order)).Error)
}

// Save updates an order header
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return duplicateExternalID(r.db.WithContext(ctx).Save(models.SalesOrderModelFromDomain(order)).Error)
}

// FindLines returns the lines of an order in creation order
func (r *GormSalesOrderRepository) FindLines(ctx context.Context, orderID uuid.UUID) ([]*trade.SalesOrderLine, error) {
	var rows []models.SalesOrderLineModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.SalesOrderLine, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindLineByExternalID finds an order line by its remote line id
func (r *GormSalesOrderRepository) FindLineByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*trade.SalesOrderLine, error) {
	var model models.SalesOrderLineModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ?", connectionID, externalID.String()).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err, trade.ErrOrderLineNotFound)
	}
	return model.ToDomain(), nil
}

// SaveLine creates or updates an order line
func (r *GormSalesOrderRepository) SaveLine(ctx context.Context, line *trade.SalesOrderLine) error {
	return r.db.WithContext(ctx).Save(models.SalesOrderLineModelFromDomain(line)).Error
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository interface
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)

// ---------------------------------------------------------------------------
// Taxes
// ---------------------------------------------------------------------------

// GormTaxRepository implements trade.TaxRepository using GORM
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// FindByKey finds a sale tax by (company, name, amount, price include)
func (r *GormTaxRepository) FindByKey(ctx context.Context, companyID uuid.UUID, name string, amount decimal.Decimal, priceInclude bool) (*trade.Tax, error) {
	var model models.TaxModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND amount = ? AND price_include = ?", companyID, name, amount, priceInclude).
		First(&model).Error; err != nil {
		return nil, notFound(err, trade.ErrTaxNotFound)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the taxes with the given IDs
func (r *GormTaxRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*trade.Tax, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.TaxModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.Tax, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a tax
func (r *GormTaxRepository) Create(ctx context.Context, tax *trade.Tax) error {
	return r.db.WithContext(ctx).Create(models.TaxModelFromDomain(tax)).Error
}

var _ trade.TaxRepository = (*GormTaxRepository)(nil)

// ---------------------------------------------------------------------------
// Deliveries
// ---------------------------------------------------------------------------

// GormDeliveryRepository implements trade.DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// FindByOrder returns the deliveries of an order, oldest first
func (r *GormDeliveryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*trade.Delivery, error) {
	var rows []models.DeliveryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.Delivery, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a delivery
func (r *GormDeliveryRepository) Save(ctx context.Context, d *trade.Delivery) error {
	return r.db.WithContext(ctx).Save(models.DeliveryModelFromDomain(d)).Error
}

var _ trade.DeliveryRepository = (*GormDeliveryRepository)(nil)
